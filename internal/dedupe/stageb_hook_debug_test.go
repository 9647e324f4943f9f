//go:build debug

package dedupe

import (
	"testing"

	"github.com/dedupe-engine/rabin/internal/block"
	"github.com/dedupe-engine/rabin/internal/debug"
)

// Only built with -tags debug, mirroring internal/debug's own hook test:
// stageB's per-block debug.RunHook call fires once for every block it
// classifies, in order, and hands the hook the exact *block.Entry being
// processed.
func TestStageBRunsHookPerBlock(t *testing.T) {
	buf := make([]byte, 3*256)
	blocks := []*block.Entry{
		{Offset: 0, Length: 256, Index: 0, Other: block.NoRef, Next: block.NoRef},
		{Offset: 256, Length: 256, Index: 1, Other: block.NoRef, Next: block.NoRef},
		{Offset: 512, Length: 256, Index: 2, Other: block.NoRef, Next: block.NoRef},
	}

	var seen []*block.Entry
	debug.Hook("dedupe.Context.stageB", func(ctx interface{}) {
		seen = append(seen, ctx.(*block.Entry))
	})
	defer debug.RemoveHook("dedupe.Context.stageB")

	ctx := &Context{blkSz: 1, delta: DeltaOff}
	ctx.stageB(buf, blocks)

	if len(seen) != len(blocks) {
		t.Fatalf("expected hook to fire %d times, got %d", len(blocks), len(seen))
	}
	for i, e := range seen {
		if e != blocks[i] {
			t.Fatalf("hook call %d got unexpected block entry", i)
		}
	}
}
