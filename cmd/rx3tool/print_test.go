package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Faultbox/rx3kit/pkg/model"
	"github.com/Faultbox/rx3kit/pkg/rx3"
	"github.com/Faultbox/rx3kit/pkg/rx3model"
)

func TestWriteChunks(t *testing.T) {
	c := &rx3.Container{}
	c.AddChunk(rx3.ChunkIndexBuffer).Data = make([]byte, 8)
	c.AddChunk(0x1234)

	var buf bytes.Buffer
	writeChunks(&buf, c)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	if len(lines) != 5 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if strings.Contains(lines[1], "*") {
		t.Errorf("known chunk marked unknown: %q", lines[1])
	}
	if !strings.Contains(lines[2], "0x00001234 *") {
		t.Errorf("unknown chunk line = %q", lines[2])
	}
	if lines[4] != "* 1 chunk(s) of unknown type" {
		t.Errorf("footer = %q", lines[4])
	}
}

func TestWriteTree(t *testing.T) {
	mesh := model.NewObject("pitch", "stadium")
	mesh.Mesh.Vertices = make([]model.Vertex, 3)
	mesh.Mesh.Triangles = []model.Triangle{{0, 1, 2}}
	mesh.Mesh.Material = "grass"

	m := &model.Model{
		Objects: []model.Object{
			mesh,
			model.NewObject("stadium", ""),
			model.NewObject("seats", "stadium"),
			model.NewObject("orphan", "missing"),
			model.NewObject("a", "b"),
			model.NewObject("b", "a"),
		},
		Materials: []model.Material{{Name: "grass", Texture: "pitch_d"}},
	}

	var buf bytes.Buffer
	writeTree(&buf, m)

	want := strings.Join([]string{
		"stadium",
		"  pitch (vertices 3, triangles 1, texture pitch_d)",
		"  seats",
		"orphan",
		"a",
		"  b",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("writeTree:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteGames(t *testing.T) {
	policies := rx3model.DefaultPolicies().With(rx3model.Policies{"FIFA13PC": {}})

	var buf bytes.Buffer
	writeGames(&buf, policies)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	for i, game := range []string{"fifa13pc", "fifa15pc", "fifa16pc"} {
		if !strings.HasPrefix(lines[i+1], game) {
			t.Errorf("line %d = %q, want game %s", i+1, lines[i+1], game)
		}
	}
	if !strings.Contains(lines[1], "8-bit") || !strings.Contains(lines[3], "16-bit") {
		t.Errorf("index widths:\n%s", buf.String())
	}
}
