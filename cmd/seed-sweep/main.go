// Command seed-sweep runs headless boards across sizes, seeding budgets and
// seeds, and reports how long each board stays active before the stability
// detector fires.
package main

import (
	"flag"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"lifeserve/internal/core"
	"lifeserve/internal/game"
	"lifeserve/internal/patterns"
)

type scenario struct {
	size  core.Size
	num   int
	den   int
	seed  int64
	steps int
}

func (s scenario) String() string {
	return fmt.Sprintf("%dx%d budget=%d/%d seed=%d", s.size.W, s.size.H, s.num, s.den, s.seed)
}

type scenarioResult struct {
	scenario    scenario
	placed      int
	initialLive int
	finalLive   int
	peakLive    int
	stableAt    int
	err         error
}

func main() {
	steps := flag.Int("steps", 2000, "generations to simulate per scenario")
	seeds := flag.Int("seeds", 4, "seeds per board size and budget")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	top := flag.Int("top", 5, "results to print")
	flag.Parse()

	sizes := []core.Size{{W: 60, H: 30}, {W: 100, H: 45}, {W: 160, H: 60}}
	budgets := []struct{ num, den int }{{1, 2}, {1, 1}, {2, 1}, {4, 1}}

	var sets []scenario
	for _, size := range sizes {
		for _, b := range budgets {
			for seed := 1; seed <= *seeds; seed++ {
				sets = append(sets, scenario{size: size, num: b.num, den: b.den, seed: int64(seed), steps: *steps})
			}
		}
	}

	fmt.Printf("Sweeping %d scenarios (%d workers, %d steps)\n", len(sets), *workers, *steps)

	jobs := make(chan scenario)
	results := make(chan scenarioResult)
	var wg sync.WaitGroup

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sc := range jobs {
				results <- runScenario(sc)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, sc := range sets {
			jobs <- sc
		}
		close(jobs)
	}()

	start := time.Now()
	var all []scenarioResult
	for res := range results {
		if res.err != nil {
			fmt.Printf("%s: %v\n", res.scenario, res.err)
			continue
		}
		all = append(all, res)
	}

	sort.Slice(all, func(i, j int) bool { return lifetime(all[i]) > lifetime(all[j]) })
	elapsed := time.Since(start)

	fmt.Printf("\nTop %d results (elapsed %s):\n", *top, elapsed.Round(time.Millisecond))
	for i := 0; i < len(all) && i < *top; i++ {
		res := all[i]
		fmt.Printf("%2d) stable=%s patterns=%d live=%s->%s peak=%s %s\n",
			i+1, stableLabel(res), res.placed, humanize.Comma(int64(res.initialLive)), humanize.Comma(int64(res.finalLive)),
			humanize.Comma(int64(res.peakLive)), res.scenario)
	}
}

func runScenario(sc scenario) scenarioResult {
	cfg := game.DefaultConfig()
	cfg.Width, cfg.Height = sc.size.W, sc.size.H
	cfg.Seed = sc.seed
	cfg.RoundLength = sc.steps + 1
	cfg.Patterns = patterns.ScaleCounts(patterns.DefaultCounts(), sc.num, sc.den)

	res := scenarioResult{scenario: sc, stableAt: -1}
	world, err := game.NewWorld(cfg)
	if err != nil {
		res.err = err
		return res
	}
	for _, n := range world.Seeded() {
		res.placed += n
	}
	res.initialLive = world.LiveCount()
	res.peakLive = res.initialLive
	for i := 0; i < sc.steps; i++ {
		rep := world.Tick()
		if rep.Live > res.peakLive {
			res.peakLive = rep.Live
		}
		if rep.BecameStable {
			res.stableAt = rep.Generation
			break
		}
	}
	res.finalLive = world.LiveCount()
	return res
}

// lifetime ranks boards that never stalled above every board that did.
func lifetime(r scenarioResult) int {
	if r.stableAt < 0 {
		return r.scenario.steps + 1
	}
	return r.stableAt
}

func stableLabel(r scenarioResult) string {
	if r.stableAt < 0 {
		return "never"
	}
	return fmt.Sprintf("gen %d", r.stableAt)
}
