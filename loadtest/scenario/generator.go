package scenario

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

// Generator は負荷試験のターゲットを生成する構造体です。
type Generator struct {
	BaseURL    string
	Keys       int
	ReadRatio  float64
	HardRatio  float64
	SweepRatio float64
	ValueSize  int
	ReadOnly   bool

	rnd *rand.Rand
	mu  sync.Mutex
	buf []byte
}

// NewGenerator は指定されたパラメータに基づいて新しい Generator を作成します。
func NewGenerator(base string, keys int, readRatio, hardRatio, sweepRatio float64, valueSize int, readOnly bool) *Generator {
	src := rand.NewSource(time.Now().UnixNano())
	if keys < 1 {
		keys = 1
	}
	return &Generator{
		BaseURL:    base,
		Keys:       keys,
		ReadRatio:  clamp(readRatio, 0, 1),
		HardRatio:  clamp(hardRatio, 0, 1),
		SweepRatio: clamp(sweepRatio, 0, 1),
		ValueSize:  valueSize,
		ReadOnly:   readOnly,
		rnd:        rand.New(src),
		buf:        make([]byte, valueSize),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Targeter は vegeta.Targeter を返します。
// SweepRatio の割合で POST /cache/sweep、残りを ReadRatio に従って GET と PUT に振り分けます。
func (g *Generator) Targeter() vegeta.Targeter {
	return func(t *vegeta.Target) error {
		g.mu.Lock()
		defer g.mu.Unlock()

		if g.SweepRatio > 0 && g.rnd.Float64() < g.SweepRatio {
			t.Method = http.MethodPost
			t.URL = g.BaseURL + "/cache/sweep"
			t.Body = nil
			t.Header = nil
			return nil
		}

		key := fmt.Sprintf("k%06d", g.rnd.Intn(g.Keys))
		url := fmt.Sprintf("%s/cache/%s", g.BaseURL, key)

		if g.ReadOnly || g.rnd.Float64() < g.ReadRatio {
			t.Method = http.MethodGet
			t.URL = url
			t.Body = nil
			t.Header = nil
			return nil
		}

		fillRandomLetters(g.rnd, g.buf)
		body := map[string]any{
			"value": string(g.buf),
			"hard":  g.rnd.Float64() < g.HardRatio,
		}
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		t.Method = http.MethodPut
		t.URL = url
		t.Body = b
		t.Header = http.Header{"Content-Type": []string{"application/json"}}
		return nil
	}
}

func fillRandomLetters(r *rand.Rand, buf []byte) {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	for i := range buf {
		buf[i] = letters[r.Intn(len(letters))]
	}
}
