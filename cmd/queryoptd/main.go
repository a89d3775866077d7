// Command queryoptd is a small HTTP demo driver around package queryopt:
// POST a SQL query to /optimize and get back its cost before and after
// optimization, plus the rewritten tree.
package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/InfedmixDBMS/queryopt"
	"github.com/InfedmixDBMS/queryopt/optimizer"
	"github.com/InfedmixDBMS/queryopt/stats"
)

type optimizeRequest struct {
	SQL     string `json:"sql"`
	Genetic bool   `json:"genetic"`
}

type optimizeResponse struct {
	InputCost float64 `json:"input_cost"`
	BestCost  float64 `json:"best_cost"`
	Tree      string  `json:"tree"`
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	log := logrus.StandardLogger()
	engine := queryopt.New(demoStatistics(), log)

	r := mux.NewRouter()
	r.HandleFunc("/optimize", optimizeHandler(engine)).Methods(http.MethodPost)
	r.HandleFunc("/healthz", healthzHandler).Methods(http.MethodGet)

	handler := handlers.LoggingHandler(os.Stdout, handlers.RecoveryHandler()(r))
	log.WithField("addr", *addr).Info("queryoptd: listening")
	if err := http.ListenAndServe(*addr, handler); err != nil {
		log.WithError(err).Fatal("queryoptd: server exited")
	}
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func optimizeHandler(engine *queryopt.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req optimizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		tree, err := engine.ParseQuery(req.SQL)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		inputCost := engine.GetCost(tree)

		var best = tree
		if req.Genetic {
			best, _ = engine.OptimizeQueryWithGeneticAlgorithm(r.Context(), tree, optimizer.DefaultGeneticParams(), nil)
		} else {
			best, _ = engine.OptimizeQuery(r.Context(), tree)
		}

		resp := optimizeResponse{
			InputCost: inputCost,
			BestCost:  engine.GetCost(best),
			Tree:      engine.PrintTree(best),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// demoStatistics seeds a small in-memory provider so queryoptd runs
// out of the box without an external catalog.
func demoStatistics() stats.Provider {
	p := stats.NewMemoryProvider()
	p.AddRelation("students", stats.TableStats{NR: 5000, LR: 50, BR: 50})
	p.AddRelation("departments", stats.TableStats{NR: 20, LR: 50, BR: 2})
	p.AddRelation("projects", stats.TableStats{NR: 200, LR: 50, BR: 5})
	return p
}
