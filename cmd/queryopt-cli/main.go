// Command queryopt-cli optimizes a single SQL query given on the command
// line and prints its cost and rewritten tree to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/InfedmixDBMS/queryopt"
	"github.com/InfedmixDBMS/queryopt/optimizer"
	"github.com/InfedmixDBMS/queryopt/stats"
)

func main() {
	genetic := flag.Bool("genetic", false, "use the genetic search instead of the heuristic ensemble")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: queryopt-cli [-genetic] \"SELECT ...\"")
		os.Exit(2)
	}

	log := logrus.StandardLogger()
	provider := stats.NewMemoryProvider()
	engine := queryopt.New(provider, log)

	tree, err := engine.ParseQuery(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}

	inputCost := engine.GetCost(tree)

	var best = tree
	if *genetic {
		best, _ = engine.OptimizeQueryWithGeneticAlgorithm(context.Background(), tree, optimizer.DefaultGeneticParams(), nil)
	} else {
		best, _ = engine.OptimizeQuery(context.Background(), tree)
	}

	fmt.Printf("input cost:  %.2f\n", inputCost)
	fmt.Printf("best cost:   %.2f\n", engine.GetCost(best))
	fmt.Println("plan:")
	fmt.Print(engine.PrintTree(best))
}
