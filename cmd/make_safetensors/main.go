package main

import (
	"flag"
	"log"
	"math"

	"github.com/qrv0/pthbin/internal/safetensors"
)

// Writes a toy two-layer .safetensors checkpoint for trying out pthbin.
func main() {
	out := flag.String("out", "toy.safetensors", "output safetensors path")
	rows := flag.Int("rows", 8, "rows")
	cols := flag.Int("cols", 16, "cols")
	flag.Parse()
	log.SetFlags(0)
	n := (*rows) * (*cols)
	weight := make([]float32, n)
	for i := range weight {
		weight[i] = float32(math.Sin(float64(i))*0.1 + 0.01*float64(i%7))
	}
	bias := make([]float32, *rows)
	for i := range bias { bias[i] = 0.01 * float32(i) }
	err := safetensors.WriteF32(*out, []safetensors.Entry{
		{Name: "toy.weight", Shape: []int{*rows, *cols}, Data: weight},
		{Name: "toy.bias", Shape: []int{*rows}, Data: bias},
	})
	if err != nil { log.Fatalf("make_safetensors: %v", err) }
}
