package partition

import "testing"

func TestShardForIsStable(t *testing.T) {
	a := ShardFor("hello", 8)
	b := ShardFor("hello", 8)
	if a != b {
		t.Fatalf("ShardFor is not deterministic: %d != %d", a, b)
	}
}

func TestShardForWithinRange(t *testing.T) {
	for _, term := range []string{"a", "apple", "zzz", "the quick brown fox"} {
		idx := ShardFor(term, 5)
		if idx >= 5 {
			t.Errorf("ShardFor(%q, 5) = %d, out of range", term, idx)
		}
	}
}

func TestShardForSingleShardAlwaysZero(t *testing.T) {
	if ShardFor("anything", 1) != 0 {
		t.Fatalf("single-shard partition must always return 0")
	}
}
