package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/Stronautt/PathTracer/engine"
	"github.com/Stronautt/PathTracer/engine/accel"
	"github.com/Stronautt/PathTracer/engine/scene"
	"github.com/Stronautt/PathTracer/log"
)

var logger = log.New("main")

func main() {
	log.SetLevelFromEnv()

	app := cli.NewApp()
	app.Name = "pathtracer"
	app.Usage = "GPU path tracer for analytic, SDF-fractal and mesh scenes"
	app.Version = "0.1.0"
	app.ArgsUsage = "[scene.yaml|scene.json]"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
	}
	app.Action = renderAction
	app.Commands = []cli.Command{
		{
			Name:      "render",
			Usage:     "open the interactive render window",
			ArgsUsage: "[scene.yaml|scene.json]",
			Action:    renderAction,
		},
		{
			Name:      "info",
			Usage:     "print scene statistics without rendering",
			ArgsUsage: "scene.yaml",
			Action:    infoAction,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func renderAction(c *cli.Context) error {
	if c.GlobalBool("v") || c.Bool("v") {
		log.SetLevel(log.Debug)
	}

	scenePath := c.Args().First()

	e, err := engine.New(scenePath)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer e.Shutdown()

	return e.Run()
}

func infoAction(c *cli.Context) error {
	scenePath := c.Args().First()
	if scenePath == "" {
		return fmt.Errorf("info requires a scene file argument")
	}

	s, err := scene.Load(scenePath)
	if err != nil {
		return err
	}

	sa := accel.BuildScene(s.Shapes)

	shapeTable := tablewriter.NewWriter(os.Stdout)
	shapeTable.SetHeader([]string{"#", "Type", "Position", "Radius", "Emissive", "CSG"})
	lights := 0
	for i := range s.Shapes {
		sh := &s.Shapes[i]
		emissive := ""
		if sh.Material.IsEmissive() {
			emissive = "yes"
			lights++
		}
		csg := ""
		if sh.Negative {
			csg = "sub"
		}
		shapeTable.Append([]string{
			fmt.Sprintf("%d", i),
			sh.Type.Label(),
			fmt.Sprintf("[%.2f %.2f %.2f]", sh.Position[0], sh.Position[1], sh.Position[2]),
			fmt.Sprintf("%.2f", sh.Radius),
			emissive,
			csg,
		})
	}
	shapeTable.Render()

	statsTable := tablewriter.NewWriter(os.Stdout)
	statsTable.SetHeader([]string{"Stat", "Value"})
	statsTable.Append([]string{"Shapes", fmt.Sprintf("%d", len(s.Shapes))})
	statsTable.Append([]string{"Models", fmt.Sprintf("%d", len(s.Models))})
	statsTable.Append([]string{"Emissive shapes", fmt.Sprintf("%d", lights)})
	statsTable.Append([]string{"BVH nodes", fmt.Sprintf("%d", len(sa.Bvh.Nodes))})
	statsTable.Append([]string{"BVH depth", fmt.Sprintf("%d", sa.Bvh.Depth())})
	statsTable.Append([]string{"Infinite shapes", fmt.Sprintf("%d", len(sa.InfiniteIndices))})
	statsTable.Render()

	return nil
}
