package playback

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/james-see/ym2151tone/pkg/converter"
	"github.com/james-see/ym2151tone/pkg/tone"
)

func TestEncodeSingleLine(t *testing.T) {
	line, err := Encode(converter.ToRegisterEvents(tone.Default()))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if bytes.Count(line, []byte("\n")) != 1 || line[len(line)-1] != '\n' {
		t.Errorf("Encode() should produce exactly one line, got %q", line)
	}

	events, err := converter.JSONToEvents(bytes.TrimSpace(line))
	if err != nil {
		t.Fatalf("JSONToEvents() error = %v", err)
	}
	if len(events) != converter.EventsPerTone {
		t.Errorf("decoded %d events, want %d", len(events), converter.EventsPerTone)
	}
}

func TestPipeSenderWritesLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipe")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	s := NewPipeSender(path)
	log := converter.ToRegisterEvents(tone.Default())
	for i := 0; i < 2; i++ {
		if err := s.Send(context.Background(), log); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := bytes.Count(data, []byte("\n")); got != 2 {
		t.Errorf("pipe holds %d lines, want 2", got)
	}
}

func TestPipeSenderMissing(t *testing.T) {
	s := NewPipeSender(filepath.Join(t.TempDir(), "absent"))
	err := s.Send(context.Background(), converter.Log{})
	if !errors.Is(err, ErrServerNotRunning) {
		t.Errorf("Send() error = %v, want ErrServerNotRunning", err)
	}
}

func TestPlayerPlay(t *testing.T) {
	got := make(chan converter.Log, 1)
	p := NewPlayer(SenderFunc(func(ctx context.Context, log converter.Log) error {
		got <- log
		return nil
	}))

	g := tone.Default()
	p.Play(g)

	select {
	case log := <-got:
		if kc, ok := log.Lookup(converter.RegKeyCode); !ok || kc != 0x3E {
			t.Errorf("KC = %#x, %v, want 0x3e", kc, ok)
		}
	case <-time.After(time.Second):
		t.Fatal("Play() did not send")
	}
}

func TestPlayerPlaySwallowsErrors(t *testing.T) {
	called := make(chan struct{}, 1)
	p := NewPlayer(SenderFunc(func(ctx context.Context, log converter.Log) error {
		called <- struct{}{}
		return errors.New("boom")
	}))
	p.Play(tone.Default())

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("Play() did not call the sender")
	}

	var nilPlayer *Player
	nilPlayer.Play(tone.Default())
}

func TestPlayerPlayDropsStaleGrids(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	sent := make(chan uint8, 4)
	first := true
	p := NewPlayer(SenderFunc(func(ctx context.Context, log converter.Log) error {
		kc, _ := log.Lookup(converter.RegKeyCode)
		if first {
			first = false
			close(entered)
			<-release
		}
		sent <- kc
		return nil
	}))

	notes := []uint8{48, 60, 72}
	grids := make([]tone.Grid, len(notes))
	for i, n := range notes {
		grids[i] = tone.Default()
		grids[i].SetCh(tone.ChNote, n)
	}
	kcOf := func(g tone.Grid) uint8 {
		kc, _ := converter.ToRegisterEvents(g).Lookup(converter.RegKeyCode)
		return kc
	}

	p.Play(grids[0])
	<-entered
	p.Play(grids[1])
	p.Play(grids[2])
	close(release)

	want := []uint8{kcOf(grids[0]), kcOf(grids[2])}
	for i, w := range want {
		select {
		case kc := <-sent:
			if kc != w {
				t.Errorf("send %d KC = %#x, want %#x", i, kc, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("send %d never happened", i)
		}
	}
	select {
	case kc := <-sent:
		t.Errorf("stale grid sent with KC %#x", kc)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPlayerPlaySync(t *testing.T) {
	want := errors.New("unreachable")
	p := NewPlayer(SenderFunc(func(ctx context.Context, log converter.Log) error {
		return want
	}))
	if err := p.PlaySync(context.Background(), tone.Default()); !errors.Is(err, want) {
		t.Errorf("PlaySync() error = %v, want %v", err, want)
	}
}
