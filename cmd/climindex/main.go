/*
Copyright © 2024 the climindex authors.
This file is part of climindex.

climindex is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

climindex is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with climindex.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command climindex is a command-line interface for calculating climate
// mode indices and event composites.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/climindex/climindexutil"
)

func main() {
	if err := climindexutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
