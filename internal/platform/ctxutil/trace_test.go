package ctxutil

import (
	"context"
	"testing"
)

func TestRunData(t *testing.T) {
	if GetRunData(context.Background()) != nil {
		t.Fatalf("empty context should carry no run data")
	}
	ctx := WithRunData(context.Background(), &RunData{RunID: "r1", Kind: "hadith"})
	rd := GetRunData(ctx)
	if rd == nil || rd.RunID != "r1" {
		t.Fatalf("run data lost: %+v", rd)
	}
	if kv := rd.KV(); len(kv) != 4 {
		t.Fatalf("KV without trace id = %v", kv)
	}
	rd.TraceID = "abc"
	if kv := rd.KV(); len(kv) != 6 || kv[5] != "abc" {
		t.Fatalf("KV with trace id = %v", kv)
	}
	var nilRD *RunData
	if nilRD.KV() != nil {
		t.Fatalf("nil run data should have no KV")
	}
}
