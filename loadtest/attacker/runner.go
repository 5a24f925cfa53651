package attacker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

// MethodSummary は HTTP メソッドごとの集計です。
type MethodSummary struct {
	Requests    uint64                `json:"requests"`
	Success     float64               `json:"success_ratio"`
	Latencies   vegeta.LatencyMetrics `json:"latencies"`
	StatusCodes map[string]int        `json:"status_codes"`
}

// ResultSummary は負荷試験の結果概要を表します。
type ResultSummary struct {
	Requests    uint64                    `json:"requests"`
	Rate        float64                   `json:"rate_req_per_sec"`
	Success     float64                   `json:"success_ratio"`
	Throughput  float64                   `json:"throughput_bytes_per_sec"`
	Latencies   vegeta.LatencyMetrics     `json:"latencies"`
	StatusCodes map[string]int            `json:"status_codes"`
	Errors      []string                  `json:"errors"`
	Duration    time.Duration             `json:"duration"`
	ByMethod    map[string]*MethodSummary `json:"by_method"`
}

// Runner は負荷試験を実行するための構造体です。
type Runner struct {
	Rate     int
	Duration time.Duration
	Timeout  time.Duration
	Name     string
	Output   string
}

// Run は指定されたターゲッターで負荷試験を実行し、結果の概要を返します。
// GET の 404 は弱参照の値が回収された結果なので、メソッド別の集計で確認します。
func (r *Runner) Run(targeter vegeta.Targeter) (*ResultSummary, error) {
	rate := vegeta.Rate{Freq: r.Rate, Per: time.Second}
	att := vegeta.NewAttacker(vegeta.Timeout(r.Timeout))

	results := att.Attack(targeter, rate, r.Duration, r.Name)

	var buf bytes.Buffer
	enc := vegeta.NewEncoder(&buf)

	var total vegeta.Metrics
	byMethod := map[string]*vegeta.Metrics{}
	for res := range results {
		total.Add(res)
		m, ok := byMethod[res.Method]
		if !ok {
			m = &vegeta.Metrics{}
			byMethod[res.Method] = m
		}
		m.Add(res)
		if err := enc.Encode(res); err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
	}
	total.Close()

	if r.Output != "" {
		if err := os.WriteFile(r.Output, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("write results: %w", err)
		}
	}

	summary := &ResultSummary{
		Requests:    total.Requests,
		Rate:        total.Rate,
		Success:     total.Success,
		Throughput:  total.Throughput,
		Latencies:   total.Latencies,
		StatusCodes: total.StatusCodes,
		Errors:      total.Errors,
		Duration:    total.Duration,
		ByMethod:    make(map[string]*MethodSummary, len(byMethod)),
	}
	for method, m := range byMethod {
		m.Close()
		summary.ByMethod[method] = &MethodSummary{
			Requests:    m.Requests,
			Success:     m.Success,
			Latencies:   m.Latencies,
			StatusCodes: m.StatusCodes,
		}
	}

	reqJSON, _ := json.MarshalIndent(summary, "", " ")
	fmt.Printf("\n=== Summary(JSON) ===\n%s\n", string(reqJSON))

	return summary, nil
}
