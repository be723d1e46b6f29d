package outfit

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// garment builds a wardrobe item from name/value attribute pairs.
func garment(name string, category Category, kv ...string) Garment {
	g := Garment{ID: uuid.New(), Name: name, Category: category}
	for i := 0; i+1 < len(kv); i += 2 {
		g.Attributes = append(g.Attributes, Attribute{Name: kv[i], Value: kv[i+1]})
	}
	return g
}

// fixedRand replays a script of Intn results, wrapping each into range.
type fixedRand struct {
	script []int
	calls  int
}

func (r *fixedRand) Intn(n int) int {
	if len(r.script) == 0 {
		return 0
	}
	v := r.script[r.calls%len(r.script)]
	r.calls++
	return v % n
}

func fixedFactory(script ...int) RandFactory {
	return func() Randomizer { return &fixedRand{script: script} }
}

func float(v float64) *float64 { return &v }
