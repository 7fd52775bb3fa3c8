package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/pear/internal/core/background"
	"github.com/hay-kot/pear/internal/core/logging"
	"github.com/hay-kot/pear/internal/core/styles"
	"github.com/hay-kot/pear/pkg/iojson"
)

// BgCmd implements the pear bg command group.
type BgCmd struct {
	flags *Flags

	jsonOutput bool
	kind       string
}

// NewBgCmd creates a new bg command.
func NewBgCmd(flags *Flags) *BgCmd {
	return &BgCmd{flags: flags}
}

// Register adds the bg command to the application.
func (cmd *BgCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "bg",
		Usage: "Choose the background the list is drawn over",
		Description: `A background is a catalog color, gradient, pattern or photo, or any
#RRGGBB color. An uploaded image covers the selection until it is
removed; choosing a new background discards the image.

Examples:
  pear bg ls --kind gradient
  pear bg set gradient sunset
  pear bg color "#336699"
  pear bg image ~/Pictures/desk.jpg
  pear bg rm-image`,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List catalog backgrounds",
				UsageText: "pear bg ls [--kind <kind>] [--json]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "kind",
						Usage:       "only list one kind (color, gradient, pattern, photo)",
						Destination: &cmd.kind,
					},
					cmd.jsonFlag(),
				},
				Action: cmd.runLs,
			},
			{
				Name:   "show",
				Usage:  "Show the active background",
				Flags:  []cli.Flag{cmd.jsonFlag()},
				Action: cmd.runShow,
			},
			{
				Name:      "set",
				Usage:     "Select a catalog background",
				UsageText: "pear bg set <kind> <name>",
				Action:    cmd.runSet,
			},
			{
				Name:      "color",
				Usage:     "Select any #RRGGBB color",
				UsageText: "pear bg color <hex>",
				Action:    cmd.runColor,
			},
			{
				Name:      "image",
				Usage:     "Cover the background with an image file",
				UsageText: "pear bg image <path>",
				Action:    cmd.runImage,
			},
			{
				Name:   "rm-image",
				Usage:  "Remove the uploaded image",
				Action: cmd.runRemoveImage,
			},
		},
	})

	return app
}

func (cmd *BgCmd) jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON lines",
		Destination: &cmd.jsonOutput,
	}
}

type descriptorInfo struct {
	background.Descriptor
	Active bool `json:"active"`
}

func (cmd *BgCmd) runLs(ctx context.Context, c *cli.Command) error {
	var list []background.Descriptor
	if cmd.kind != "" {
		kind := background.Kind(strings.ToLower(cmd.kind))
		if !kind.IsValid() {
			return fmt.Errorf("unknown background kind %q", cmd.kind)
		}
		list = background.Catalog(kind)
	} else {
		list = background.All()
	}

	current := cmd.flags.App.Snapshot().Background
	active := func(d background.Descriptor) bool {
		return current.UploadedImage == nil && current.Descriptor == d
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, d := range list {
			if err := iojson.WriteLine(out, descriptorInfo{Descriptor: d, Active: active(d)}); err != nil {
				return fmt.Errorf("encode background: %w", err)
			}
		}
		return nil
	}

	theme := styles.New(cmd.flags.Config.TUI.Theme, current)
	tty := isTerminal(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, " \tKIND\tNAME\tDARK")
	for _, d := range list {
		mark := " "
		if active(d) {
			mark = "*"
		}
		name := d.Name
		if tty {
			name = theme.SwatchFor(d)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", mark, d.Kind, name, d.Dark)
	}
	return w.Flush()
}

func (cmd *BgCmd) runShow(ctx context.Context, c *cli.Command) error {
	snap := cmd.flags.App.Snapshot()
	bg := snap.Background

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, struct {
			Descriptor background.Descriptor `json:"descriptor"`
			HasImage   bool                  `json:"hasImage"`
			Dark       bool                  `json:"dark"`
		}{bg.Descriptor, bg.UploadedImage != nil, snap.Dark})
	}

	_, _ = fmt.Fprintf(out, "%s %s\n", bg.Descriptor.Kind, bg.Descriptor.Name)
	if bg.UploadedImage != nil {
		_, _ = fmt.Fprintln(out, "covered by an uploaded image")
	}
	return nil
}

func (cmd *BgCmd) runSet(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithCommand(ctx, "bg set")

	if c.Args().Len() != 2 {
		return fmt.Errorf("expected a kind and a name, got %d argument(s)", c.Args().Len())
	}

	kind := background.Kind(strings.ToLower(c.Args().Get(0)))
	if !kind.IsValid() {
		return fmt.Errorf("unknown background kind %q", c.Args().Get(0))
	}
	d, ok := background.Lookup(kind, c.Args().Get(1))
	if !ok {
		return fmt.Errorf("no %s named %q; see \"pear bg ls --kind %s\"", kind, c.Args().Get(1), kind)
	}

	cmd.flags.App.SelectBackground(ctx, d)
	_, _ = fmt.Fprintf(c.Root().Writer, "Background set to %s %s\n", d.Kind, d.Name)
	return cmd.flags.flush()
}

func (cmd *BgCmd) runColor(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithCommand(ctx, "bg color")

	hex := c.Args().First()
	d, ok := cmd.flags.App.SelectColor(ctx, hex)
	if !ok {
		return fmt.Errorf("invalid color %q: expected #RRGGBB", hex)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Background set to %s (%s)\n", d.Value, d.Name)
	return cmd.flags.flush()
}

func (cmd *BgCmd) runImage(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithCommand(ctx, "bg image")

	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("image path is required")
	}

	uri, err := background.ReadImageFile(path)
	if err != nil {
		return err
	}
	if !cmd.flags.App.UploadBackgroundImage(ctx, uri) {
		return fmt.Errorf("%s could not be used as a background", path)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Background image set from %s\n", path)
	return cmd.flags.flush()
}

func (cmd *BgCmd) runRemoveImage(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithCommand(ctx, "bg rm-image")

	if !cmd.flags.App.RemoveBackgroundImage(ctx) {
		_, _ = fmt.Fprintln(c.Root().Writer, "No image to remove")
		return nil
	}
	_, _ = fmt.Fprintln(c.Root().Writer, "Background image removed")
	return cmd.flags.flush()
}
