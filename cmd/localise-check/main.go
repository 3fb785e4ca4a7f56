// Command localise-check runs a pattern through the pipeline and prints
// the result of each stage. It is a development aid for inspecting how a
// pattern tokenises, parses, compiles and formats for a given locale.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	localise "github.com/goliatone/go-localise"
)

type checkConfig struct {
	pattern string
	locale  string
	mode    string
	values  valueFlag
}

type valueFlag struct {
	items map[string]localise.PlaceholderValue
}

func (f *valueFlag) String() string {
	var names []string
	for name := range f.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// Set accepts name=value pairs. Values that parse as integers or floats
// become numeric placeholders, everything else stays a string.
func (f *valueFlag) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	if !ok || name == "" {
		return fmt.Errorf("invalid value %q, expected name=value", raw)
	}
	if f.items == nil {
		f.items = make(map[string]localise.PlaceholderValue)
	}

	switch {
	case isUnsigned(value):
		parsed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		f.items[name] = localise.UnsignedValue(parsed)
	case isInteger(value):
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		f.items[name] = localise.IntegerValue(parsed)
	case isFloat(value):
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		f.items[name] = localise.FloatValue(parsed)
	default:
		f.items[name] = localise.StringValue(value)
	}
	return nil
}

func isUnsigned(value string) bool {
	_, err := strconv.ParseUint(value, 10, 64)
	return err == nil
}

func isInteger(value string) bool {
	_, err := strconv.ParseInt(value, 10, 64)
	return err == nil
}

func isFloat(value string) bool {
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		reportError(err)
	}

	if err := run(cfg); err != nil {
		reportError(err)
	}
}

func reportError(err error) {
	fmt.Fprintf(os.Stderr, "localise-check: %v\n", err)
	os.Exit(1)
}

func parseFlags() (checkConfig, error) {
	var cfg checkConfig

	flag.StringVar(&cfg.pattern, "pattern", "", "pattern to check")
	flag.StringVar(&cfg.locale, "locale", "en", "locale to compile and format for")
	flag.StringVar(&cfg.mode, "mode", "format", "stage to stop at: tokens, tree, parts or format")
	flag.Var(&cfg.values, "value", "placeholder as name=value. Repeat flag to add more.")

	flag.Parse()

	if cfg.pattern == "" {
		return checkConfig{}, errors.New("a -pattern value is required")
	}

	switch cfg.mode {
	case "tokens", "tree", "parts", "format":
	default:
		return checkConfig{}, fmt.Errorf("unknown mode %q", cfg.mode)
	}

	return cfg, nil
}

func run(cfg checkConfig) error {
	services := localise.NewCLDRServices()
	registry := localise.NewTagRegistry()

	tag, err := registry.Tag(cfg.locale)
	if err != nil {
		return err
	}

	tokens, err := localise.Tokenise(cfg.pattern, localise.PatternGrammar, services)
	if err != nil {
		return err
	}
	if cfg.mode == "tokens" {
		printTokens(tokens)
		return nil
	}

	tree, err := localise.Parse(tokens)
	if err != nil {
		return err
	}
	if cfg.mode == "tree" {
		printTree(tree, tree.Root(), 0)
		return nil
	}

	formatter, err := localise.Compile(tree, tag, services, localise.NewDefaultCommandRegistry(), registry)
	if err != nil {
		return err
	}
	if cfg.mode == "parts" {
		printParts(formatter)
		return nil
	}

	result, err := formatter.Format(cfg.values.items)
	if err != nil {
		return err
	}
	fmt.Println(result.Value)
	return nil
}

func printTokens(tokens []localise.Token) {
	for _, token := range tokens {
		fmt.Printf("%-12s %q bytes=%d chars=%d graphemes=%d\n",
			token.Class, token.Text, token.Start.Byte, token.Start.Character, token.Start.Grapheme)
	}
}

func printTree(tree *localise.Tree, index, depth int) {
	node := tree.Node(index)
	if node == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	if text := node.Text(); text != "" {
		fmt.Printf("%s%s %q\n", indent, node.Kind, text)
	} else {
		fmt.Printf("%s%s\n", indent, node.Kind)
	}
	for _, child := range node.Children {
		printTree(tree, child, depth+1)
	}
}

func printParts(formatter *localise.PatternFormatter) {
	for _, name := range formatter.PatternNames() {
		fmt.Printf("pattern %q:\n", name)
		parts, _ := formatter.Parts(name)
		for _, part := range parts {
			fmt.Printf("  %s\n", part.Describe())
		}
	}
}
