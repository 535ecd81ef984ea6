package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jensneuse/abstractlogger"
	"github.com/spf13/cobra"

	graphql "github.com/llehouerou/go-graphql-variants"
	"github.com/llehouerou/go-graphql-variants/schema"
)

// metadata returns s as position metadata, or nil when no schema is
// configured.
func metadata(s *schema.Schema) graphql.SchemaMetadata {
	if s == nil {
		return nil
	}
	return s
}

func newRenderCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:     "render [position...]",
		Short:   "render prints the selection of the declared positions",
		Example: "gqlvariants render --config gqlvariants.yaml allData",
		RunE: func(cmd *cobra.Command, args []string) error {
			decl, s, err := env.load()
			if err != nil {
				return err
			}
			positions := decl.Positions
			if len(args) > 0 {
				positions = positions[:0:0]
				for _, name := range args {
					p, ok := decl.position(name)
					if !ok {
						return fmt.Errorf("unknown position %s", name)
					}
					positions = append(positions, p)
				}
			}

			out := cmd.OutOrStdout()
			for _, p := range positions {
				position, err := buildPosition(p, metadata(s))
				if err != nil {
					return err
				}
				err = renderField(out, p.Name, position)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func renderField(w io.Writer, name string, p *graphql.Position[Value]) error {
	_, err := fmt.Fprintf(w, "%s {\n", name)
	if err != nil {
		return err
	}
	err = p.RenderTo(w, 1)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "}\n")
	return err
}

func newCheckCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "check validates the declared positions against the schema",
		Long: `check builds every declared position with the schema metadata and
validates the query selecting it. Every problem is reported and the command
fails if there is at least one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			decl, s, err := env.load()
			if err != nil {
				return err
			}
			if s == nil {
				return fmt.Errorf("check needs a schema")
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, p := range decl.Positions {
				err := checkPosition(p, s)
				if err != nil {
					failed++
					env.logger.Error("position check failed",
						abstractlogger.String("position", p.Name),
						abstractlogger.Error(err),
					)
					fmt.Fprintf(out, "FAIL %s: %v\n", p.Name, err)
					continue
				}
				env.logger.Debug("position checked", abstractlogger.String("position", p.Name))
				fmt.Fprintf(out, "ok   %s\n", p.Name)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d positions failed", failed, len(decl.Positions))
			}
			return nil
		},
	}
}

func checkPosition(decl PositionDeclaration, s *schema.Schema) error {
	p, err := buildPosition(decl, s)
	if err != nil {
		return err
	}
	query, err := graphql.ConstructPositionQuery(decl.Name, p, nil)
	if err != nil {
		return err
	}
	return s.ValidateQuery(query)
}

func newDecodeCommand(env *environment) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "decode position",
		Short: "decode decodes a response object through a declared position",
		Long: `decode reads one response object, or an array of them, and prints the
decoded values as JSON.`,
		Example: "echo '{\"__typename\":\"BlogPost\",\"id\":\"1\"}' | gqlvariants decode allData",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decl, s, err := env.load()
			if err != nil {
				return err
			}
			d, ok := decl.position(args[0])
			if !ok {
				return fmt.Errorf("unknown position %s", args[0])
			}
			p, err := buildPosition(d, metadata(s))
			if err != nil {
				return err
			}

			data, err := readInput(input)
			if err != nil {
				return err
			}
			out, err := decodeInput(p, data)
			if err != nil {
				return err
			}
			env.logger.Debug("decoded", abstractlogger.String("position", d.Name))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "response file, - for stdin")
	return cmd
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// decodeInput decodes one object, or every element of an array.
func decodeInput(p *graphql.Position[Value], data []byte) (any, error) {
	var items []json.RawMessage
	if json.Unmarshal(data, &items) != nil {
		return p.Decode(data)
	}
	out := make([]Value, len(items))
	for i, item := range items {
		v, err := p.Decode(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
