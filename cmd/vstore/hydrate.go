package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vstore"
	"github.com/vango-dev/vstore/internal/demo"
	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/composer"
)

func hydrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hydrate <file>",
		Short: "Hydrate the demo stores and print their state",
		Long: `Hydrate the demo stores from a JSON file and print the exported state.

The file maps store identifiers to state, for example:

  {"Cart": {"items": ["apple"]}, "Cart/Counter": {"count": 1}}

Keys absent from a store's payload keep their initial value, so the
output shows the full state every store ends up with. Use "-" to read
from standard input.

Examples:
  vstore hydrate state.json
  echo '{"Counter": {"count": 3}}' | vstore hydrate -`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("E140").
					WithDetail("hydrate takes exactly one file argument").
					WithExample("vstore hydrate state.json")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readHydration(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runHydrate(data, cmd.OutOrStdout())
		},
	}
	return cmd
}

// readHydration reads a hydration payload from path, or from stdin when
// path is "-".
func readHydration(path string, stdin io.Reader) (composer.HydrationData, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.New("E221").WithDetailf("read %s", path).Wrap(err)
	}

	var data composer.HydrationData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.New("E221").
			WithDetailf("%s is not a JSON object of store states", path).
			Wrap(err)
	}
	return data, nil
}

func runHydrate(data composer.HydrationData, out io.Writer) error {
	app, err := vstore.New(vstore.Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		return err
	}
	defer app.Close()

	stores := demo.New(app.Runtime())
	scope := app.NewScope(data)
	if _, err := stores.ProvideAll(scope.Owner()); err != nil {
		return err
	}

	exported, err := scope.Export()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(exported)
}
