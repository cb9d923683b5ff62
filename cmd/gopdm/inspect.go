package main

import (
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reoring/gopdm"
)

func newClassesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List the classes that can be created",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range a.factory.Classes() {
				a.ui.head.Fprint(a.ui.out, c.Keyword())
				if stack := c.InheritanceStack(); len(stack) > 1 {
					a.ui.dim.Fprintf(a.ui.out, " : %s", strings.Join(stack[1:], " > "))
				}
				if doc := c.Documentation(); doc != "" {
					fmt.Fprintf(a.ui.out, "  %s", doc)
				}
				fmt.Fprintln(a.ui.out)
			}
			return nil
		},
	}
}

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <class>",
		Short: "Print the JSON schema of a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.ser.WithIndent("  ").ClassSchema(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.ui.out, text)
			return nil
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check that files read back into objects",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				h, err := a.ser.CreateObjectFromFile(path)
				if err != nil {
					a.ui.failure(path, err)
					failed++
					continue
				}
				o := h.AsObject()
				a.ui.success("%s (%s %s)", path, o.ClassKeyword(), o.UUID())
				o.Destroy()
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed validation", failed, len(args))
			}
			return nil
		},
	}
}

func newConvertCmd(a *app) *cobra.Command {
	var (
		skeleton bool
		noUUIDs  bool
		asYAML   bool
		indent   string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Rewrite a file as full data, a skeleton or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.ser.CreateObjectFromFile(args[0])
			if err != nil {
				return err
			}
			defer h.AsObject().Destroy()

			ser := a.ser.WithUUIDs(!noUUIDs)
			if skeleton {
				ser = ser.WithType(gopdm.DataSkeleton)
			}
			if indent != "" && !asYAML {
				ser = ser.WithIndent(indent)
			}
			text, err := ser.WriteObjectToString(h)
			if err != nil {
				return err
			}
			out := []byte(text + "\n")
			if asYAML {
				if out, err = jsonToYAML([]byte(text)); err != nil {
					return err
				}
			}
			if output == "" {
				_, err = a.ui.out.Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return err
			}
			a.ui.success("wrote %s", output)
			return nil
		},
	}
	cmd.Flags().BoolVar(&skeleton, "skeleton", false, "write nested records as Class and UUID only")
	cmd.Flags().BoolVar(&noUUIDs, "no-uuids", false, "omit UUIDs")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "write YAML instead of JSON")
	cmd.Flags().StringVar(&indent, "indent", "  ", "JSON indentation (empty for compact output)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// jsonToYAML re-encodes a JSON document as block-style YAML, keeping key
// order.
func jsonToYAML(data []byte) ([]byte, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("convert: invalid JSON")
	}
	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	var plain func(*yaml.Node)
	plain = func(n *yaml.Node) {
		n.Style = 0
		for _, c := range n.Content {
			plain(c)
		}
	}
	plain(&n)
	return yaml.Marshal(&n)
}
