package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/tessiemcp/tessie-mcp/pkg/tools"
)

var ErrCommandLineArgs = errors.New("invalid command line arguments")

// ParseArguments converts name=value pairs into tool arguments. Values that look like booleans or
// numbers are passed as such, everything else as a string.
func ParseArguments(pairs []string) (tools.Arguments, error) {
	args := tools.Arguments{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: expected NAME=VALUE, got '%s'", ErrCommandLineArgs, pair)
		}
		if _, dup := args[name]; dup {
			return nil, fmt.Errorf("%w: '%s' given twice", ErrCommandLineArgs, name)
		}
		args[name] = parseValue(value)
	}
	return args, nil
}

func parseValue(value string) interface{} {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return json.Number(value)
	}
	return value
}

// printTools writes one line per tool with its arguments, sorted by name.
func printTools(w io.Writer, descriptors []tools.Descriptor) {
	sorted := append([]tools.Descriptor(nil), descriptors...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	maxLength := 0
	for _, d := range sorted {
		if len(d.Name) > maxLength {
			maxLength = len(d.Name)
		}
	}
	for _, d := range sorted {
		fmt.Fprintf(w, "  %s%s %s\n", d.Name, strings.Repeat(" ", maxLength-len(d.Name)), d.Description)
	}
}

// printToolUsage describes the arguments accepted by d.
func printToolUsage(w io.Writer, d tools.Descriptor) {
	required := make(map[string]bool)
	for _, name := range d.InputSchema.Required {
		required[name] = true
	}
	var names []string
	for name := range d.InputSchema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "Usage: %s", d.Name)
	for _, name := range names {
		if required[name] {
			fmt.Fprintf(w, " %s=VALUE", name)
		} else {
			fmt.Fprintf(w, " [%s=VALUE]", name)
		}
	}
	fmt.Fprintf(w, "\n\n%s\n", d.Description)
	for _, name := range names {
		p := d.InputSchema.Properties[name]
		fmt.Fprintf(w, "  %s (%s): %s\n", name, p.Type, p.Description)
	}
}
