package main

import (
	"fmt"
	"log"
	"os"

	"github.com/voodooEntity/regrow/src/system/archivist"
	"github.com/voodooEntity/regrow/src/system/grower"
	"github.com/voodooEntity/regrow/src/system/projection"
	"github.com/voodooEntity/regrow/src/system/rgg"
	"github.com/voodooEntity/regrow/src/system/ruleBuilder"
)

// Grows a tiny plant: a chain of stems that extends every tick, with each
// unsprouted stem putting out one rotated sideshoot.
func main() {
	logger := archivist.New(&archivist.Config{
		Logger:   log.New(os.Stdout, "", 0),
		LogLevel: archivist.LEVEL_INFO,
	})

	// Split a 2-stem into a 3-stem: the new stem continues the chain.
	splitRule, err := ruleBuilder.NewRule().
		From(ruleBuilder.NewPatternNode(0).SetName("stem")).
		From(ruleBuilder.NewPatternNode(1).SetName("stem")).
		Connect(0, 1).
		Add([]int{1}, ruleBuilder.NewTemplate("stem").
			Set("dir", "dir + 1").
			Set("sprouted", "0")).
		Build()
	if err != nil {
		logger.Fatal("building split rule", err)
		os.Exit(1)
	}

	// Create a sideshoot on every stem that does not have one yet.
	sproutRule, err := ruleBuilder.NewRule().
		From(ruleBuilder.NewPatternNode(0).SetName("stem").
			AddCondition("sprouted", rgg.Equals(rgg.NewFloat(0)))).
		MatchAttributes().
		Replace(0, ruleBuilder.NewTemplate("stem").
			Set("sprouted", "1").
			Set("dir", "dir")).
		Add([]int{0}, ruleBuilder.NewTemplate("shoot").
			Set("rotation", "90 * dir + rand(-10, 10)")).
		Build()
	if err != nil {
		logger.Fatal("building sprout rule", err)
		os.Exit(1)
	}

	// Seed: two connected stems, the second growing out of the first.
	graph := rgg.NewGraph()
	seed := rgg.NewNode("stem")
	seed.Values["dir"] = rgg.NewFloat(0)
	seed.Values["sprouted"] = rgg.NewFloat(1)
	root := graph.InsertNodeWith(seed)

	tip := rgg.NewNode("stem")
	tip.Values["dir"] = rgg.NewFloat(1)
	tip.Values["sprouted"] = rgg.NewFloat(0)
	tipID := graph.InsertNodeWith(tip)

	if err := graph.Dirty.AddEdge(root, tipID); err != nil {
		logger.Fatal("seeding", err)
		os.Exit(1)
	}
	graph.Dirty.AddAncestor(tipID, root)
	graph.Dirty.AdvanceGeneration()

	proj := projection.New("plant", logger)

	tickFn := func(g *rgg.Graph, l *archivist.Archivist) {
		proj.Sync(g)
		l.Info("tick complete", g.Order(), "nodes")
	}

	plant := grower.New(graph, []rgg.Rule{splitRule, sproutRule}, logger)
	plant.RegisterTickFunction(&tickFn)

	results, err := plant.Grow(4)
	if err != nil {
		logger.Fatal("growing", err)
		os.Exit(1)
	}
	for tick, result := range results {
		logger.Info("tick result", tick, "added", len(result.Added), "removed", len(result.Removed), "modified", len(result.Modified))
	}

	fmt.Print(graph.Dump())
	fmt.Println("stems:", proj.CountByName("stem"))
	fmt.Println("shoots:", proj.CountByName("shoot"))
	for _, shoot := range proj.NodesByName("shoot") {
		fmt.Printf("shoot %s rotation=%s\n", shoot.Value, shoot.Properties["rotation"])
	}
}
