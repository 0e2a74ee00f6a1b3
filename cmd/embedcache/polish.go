package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/botirk38/embedcache/polish"
	"github.com/botirk38/embedcache/types"
)

var polishCmd = &cobra.Command{
	Use:   `polish [flags] "text"`,
	Short: "Polish one text and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPolish,
}

func init() {
	polishCmd.Flags().String("field", string(types.FieldGeneric), "field type: brief, analysis, suggest or generic")
	rootCmd.AddCommand(polishCmd)
}

func runPolish(cmd *cobra.Command, args []string) error {
	field, _ := cmd.Flags().GetString("field")

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.polisher == nil {
		return errNoCompletionKey
	}

	resp, err := a.polisher.Polish(cmd.Context(), polish.Request{
		Text:      strings.Join(args, " "),
		FieldType: types.FieldType(field),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
