// Archivist: A CLI tool for uploading manga chapters to ImgChest and
// maintaining Cubari-compatible reader metadata.
// Copyright (C) 2025 Archivist Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package prompt

import (
	"Archivist/pkg/errors"
	"fmt"
)

// ChooseGroup resolves the scanlation group a chapter is credited to.
// A single available group wins automatically; multiple groups go
// through the prompter.
func ChooseGroup(p Prompter, groups []string, chapterName string) (string, error) {
	switch len(groups) {
	case 0:
		return "", errors.New("no groups available for selection")
	case 1:
		return groups[0], nil
	}
	return p.Select(fmt.Sprintf("Select group for %s", chapterName), groups)
}
