package cli

import (
	"encoding/json"

	"github.com/urfave/cli/v2"

	"go.viam.com/motorlib/config"
)

// SchemaAction prints the JSON schema of an axis config file.
func SchemaAction(c *cli.Context) error {
	data, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", data)
	return nil
}
