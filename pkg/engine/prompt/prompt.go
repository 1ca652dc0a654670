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
	"sort"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// Prompter is the interactive decision surface of the pipeline. Every
// question the processor asks a human goes through this interface so
// headless runs and tests can answer without a terminal.
type Prompter interface {
	// Confirm asks a yes/no question, defaulting to no.
	Confirm(question string) (bool, error)

	// Select asks the user to pick one option.
	Select(question string, options []string) (string, error)

	// SelectMany asks the user to pick a subset of options. Accepted
	// answers are "all", "none" (or empty), and comma-separated
	// numbers with ranges such as "1,3-5".
	SelectMany(question string, options []string) ([]string, error)
}

// Console is the terminal-backed Prompter.
type Console struct{}

func (Console) Confirm(question string) (bool, error) {
	p := promptui.Prompt{Label: question, IsConfirm: true}
	_, err := p.Run()
	if err == promptui.ErrAbort {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	return true, nil
}

func (Console) Select(question string, options []string) (string, error) {
	p := promptui.Select{Label: question, Items: options}
	_, value, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("reading selection: %w", err)
	}
	return value, nil
}

func (Console) SelectMany(question string, options []string) ([]string, error) {
	fmt.Println(question)
	for i, opt := range options {
		fmt.Printf("  %d. %s\n", i+1, opt)
	}

	p := promptui.Prompt{Label: `Selection ("all", "none", or e.g. "1,3-5")`}
	for {
		answer, err := p.Run()
		if err != nil {
			return nil, fmt.Errorf("reading selection: %w", err)
		}
		picked, err := ParseSelection(answer, len(options))
		if err != nil {
			fmt.Println(err)
			continue
		}
		selected := make([]string, 0, len(picked))
		for _, idx := range picked {
			selected = append(selected, options[idx])
		}
		return selected, nil
	}
}

// Auto answers every question without a terminal. AcceptAll decides
// confirmations and makes SelectMany take everything or nothing;
// Select always takes the first option.
type Auto struct {
	AcceptAll bool
}

func (a Auto) Confirm(string) (bool, error) { return a.AcceptAll, nil }

func (a Auto) Select(_ string, options []string) (string, error) {
	if len(options) == 0 {
		return "", errors.New("no options to select from")
	}
	return options[0], nil
}

func (a Auto) SelectMany(_ string, options []string) ([]string, error) {
	if !a.AcceptAll {
		return nil, nil
	}
	return options, nil
}

// ParseSelection turns a selection answer into sorted, de-duplicated
// zero-based indexes. n is the number of options on offer.
func ParseSelection(answer string, n int) ([]int, error) {
	answer = strings.ToLower(strings.TrimSpace(answer))
	switch answer {
	case "", "none":
		return nil, nil
	case "all":
		picked := make([]int, n)
		for i := range picked {
			picked[i] = i
		}
		return picked, nil
	}

	seen := make(map[int]struct{})
	for _, part := range strings.Split(answer, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, found := strings.Cut(part, "-")
		if !found {
			hi = lo
		}
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q: not a number", part)
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q: not a number", part)
		}
		if start > end {
			return nil, fmt.Errorf("invalid range %q: start exceeds end", part)
		}
		if start < 1 || end > n {
			return nil, fmt.Errorf("selection %q out of range 1-%d", part, n)
		}
		for i := start; i <= end; i++ {
			seen[i-1] = struct{}{}
		}
	}

	picked := make([]int, 0, len(seen))
	for idx := range seen {
		picked = append(picked, idx)
	}
	sort.Ints(picked)
	return picked, nil
}
