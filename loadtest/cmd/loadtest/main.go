// Package main は負荷試験ツールのエントリーポイントを提供します。
package main

import (
	"fmt"
	"os"

	"github.com/amakane-hakari/weakcache/loadtest/attacker"
	"github.com/amakane-hakari/weakcache/loadtest/config"
	"github.com/amakane-hakari/weakcache/loadtest/scenario"
)

func main() {
	cfg := config.Load()

	fmt.Printf("[INFO] base-url=%s rate=%d duration=%s keys=%d read-ratio=%.2f hard-ratio=%.2f sweep-ratio=%.2f value-size=%d read-only=%v\n",
		cfg.BaseURL, cfg.Rate, cfg.Duration, cfg.Keys, cfg.ReadRatio, cfg.HardRatio, cfg.SweepRatio, cfg.ValueSize, cfg.DisablePUT)

	gen := scenario.NewGenerator(
		cfg.BaseURL,
		cfg.Keys,
		cfg.ReadRatio,
		cfg.HardRatio,
		cfg.SweepRatio,
		cfg.ValueSize,
		cfg.DisablePUT,
	)

	r := attacker.Runner{
		Rate:     cfg.Rate,
		Duration: cfg.Duration,
		Timeout:  cfg.Timeout,
		Name:     cfg.Name,
		Output:   cfg.Output,
	}

	if _, err := r.Run(gen.Targeter()); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
