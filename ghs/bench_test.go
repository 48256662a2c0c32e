package ghs_test

import (
	"testing"

	"github.com/katalvlaran/synchghs/builder"
	"github.com/katalvlaran/synchghs/ghs"
)

func BenchmarkDecode(b *testing.B) {
	frame := []byte("CONVERGE|12|40|17|55|17,40,123456|3")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := ghs.Decode(frame); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSynchronizer_DeferDrain(b *testing.B) {
	const peers = 32
	for i := 0; i < b.N; i++ {
		s := ghs.NewSynchronizer()
		s.Begin(0, ghs.PhaseSearch, 0)
		for p := 0; p < peers; p++ {
			s.Admit(ghs.Message{Action: ghs.ActionSearch, From: p, Round: 1})
		}
		s.Begin(0, ghs.PhaseSearch, 1)
		for {
			if _, _, ok := s.Next(); !ok {
				break
			}
		}
	}
}

func BenchmarkRun_Random32(b *testing.B) {
	g, err := builder.BuildGraph([]builder.BuilderOption{builder.WithSeed(1), builder.WithShuffledWeights()},
		builder.RandomConnected(32, 0.1))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		runGraph(b, g, nil)
	}
}
