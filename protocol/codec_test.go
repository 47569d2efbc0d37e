package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"foodarena/world"
)

func TestDecodeInputRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{``, `null`, `42`, `"up"`, `[true]`, `true`} {
		if _, err := DecodeInput(json.RawMessage(raw)); !errors.Is(err, ErrNotObject) {
			t.Errorf("DecodeInput(%q): expected ErrNotObject, got %v", raw, err)
		}
	}
}

func TestDecodeInputPartialObject(t *testing.T) {
	in, err := DecodeInput(json.RawMessage(` {"up":true,"right":true}`))
	if err != nil {
		t.Fatal(err)
	}
	if !in.Up || !in.Right || in.Down || in.Left {
		t.Errorf("unexpected input %+v", in)
	}
	if _, err := DecodeInput(json.RawMessage(`{"up":"yes"}`)); err == nil {
		t.Error("expected type error for non-bool flag")
	}
}

func TestJSONCodecEnvelope(t *testing.T) {
	frame, err := JSON.Encode(Envelope{T: MsgJoin, Data: JoinMsg{Name: "Zed"}})
	if err != nil {
		t.Fatal(err)
	}
	if string(frame) != `{"t":"join","d":{"name":"Zed"}}` {
		t.Errorf("unexpected frame %s", frame)
	}
	typ, payload, err := JSON.Decode(frame)
	if err != nil {
		t.Fatal(err)
	}
	if typ != MsgJoin {
		t.Errorf("expected join, got %s", typ)
	}
	msg, err := DecodePayload[JoinMsg](JSON, payload)
	if err != nil || msg.Name != "Zed" {
		t.Errorf("expected Zed, got %+v (%v)", msg, err)
	}
}

func TestMsgpackCodecDelta(t *testing.T) {
	if !Msgpack.Binary() || JSON.Binary() {
		t.Fatal("only msgpack should be binary")
	}
	evs := []world.Event{
		world.PlayerMoved{ID: "a", X: 3, Y: 4},
		world.ScoreUpdated{ID: "a", Score: 2},
		world.FoodAdded{Food: world.FoodView{ID: "food-9", X: 7, Y: 8, Color: "hsl(1, 100%, 50%)"}},
	}
	frame, err := Msgpack.Encode(Envelope{T: MsgDelta, Data: ChangesFrom(evs)})
	if err != nil {
		t.Fatal(err)
	}
	typ, payload, err := Msgpack.Decode(frame)
	if err != nil {
		t.Fatal(err)
	}
	if typ != MsgDelta {
		t.Fatalf("expected delta, got %s", typ)
	}
	changes, err := DecodePayload[[]Change](Msgpack, payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(changes))
	}
	if changes[0].K != ChangePlayerMoved || changes[0].X != 3 || changes[0].Y != 4 {
		t.Errorf("unexpected move %+v", changes[0])
	}
	if changes[1].K != ChangeScoreUpdated || changes[1].Score != 2 {
		t.Errorf("unexpected score %+v", changes[1])
	}
	if changes[2].Food == nil || changes[2].Food.ID != "food-9" {
		t.Errorf("unexpected food %+v", changes[2])
	}
}

// Edge positions sit on 0, which must still reach the wire.
func TestDeltaKeepsZeroCoordinates(t *testing.T) {
	evs := []world.Event{
		world.PlayerMoved{ID: "a", X: 0, Y: 5},
		world.FoodRemoved{ID: "f", X: 7, Y: 0},
		world.PlayerLeft{ID: "b", X: 0, Y: 0},
	}
	env := Envelope{T: MsgDelta, Data: ChangesFrom(evs)}

	for _, c := range []Codec{JSON, Msgpack} {
		frame, err := c.Encode(env)
		if err != nil {
			t.Fatal(err)
		}
		_, payload, err := c.Decode(frame)
		if err != nil {
			t.Fatal(err)
		}
		var raw []map[string]interface{}
		if err := c.Unmarshal(payload, &raw); err != nil {
			t.Fatalf("%s: %v", c.Name(), err)
		}
		if len(raw) != len(evs) {
			t.Fatalf("%s: expected %d changes, got %d", c.Name(), len(evs), len(raw))
		}
		for i, ch := range raw {
			for _, key := range []string{"x", "y"} {
				if _, ok := ch[key]; !ok {
					t.Errorf("%s: change %d (%v) missing %q", c.Name(), i, ch["k"], key)
				}
			}
		}
	}

	frame, _ := JSON.Encode(Envelope{T: MsgDelta, Data: ChangesFrom(evs[:1])})
	if string(frame) != `{"t":"delta","d":[{"k":"playerMoved","id":"a","x":0,"y":5}]}` {
		t.Errorf("unexpected frame %s", frame)
	}
}

func TestCodecByName(t *testing.T) {
	for name, want := range map[string]Codec{"": JSON, "json": JSON, "msgpack": Msgpack} {
		got, err := CodecByName(name)
		if err != nil || got != want {
			t.Errorf("CodecByName(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := CodecByName("xml"); err == nil {
		t.Error("expected error for unknown codec")
	}
}

func TestChangeFromCoversEveryKind(t *testing.T) {
	cases := map[string]world.Event{
		ChangePlayerJoined: world.PlayerJoined{Player: world.PlayerView{ID: "a"}},
		ChangePlayerMoved:  world.PlayerMoved{ID: "a"},
		ChangePlayerLeft:   world.PlayerLeft{ID: "a"},
		ChangeFoodAdded:    world.FoodAdded{Food: world.FoodView{ID: "f"}},
		ChangeFoodRemoved:  world.FoodRemoved{ID: "f"},
		ChangeScoreUpdated: world.ScoreUpdated{ID: "a"},
	}
	for k, ev := range cases {
		c := ChangeFrom(ev)
		if c.K != k {
			t.Errorf("expected kind %s, got %s", k, c.K)
		}
		if c.K != ev.Kind().String() {
			t.Errorf("wire kind %s differs from event kind %s", c.K, ev.Kind())
		}
	}
}
