package main

import (
	"encoding/json"
	"testing"
)

func TestDecodeInputCoercesFields(t *testing.T) {
	in := decodeInput(json.RawMessage(`{"forward":1,"strafe":"-0.5","turn":"2","sprint":"yes","shoot":1}`))
	if in.Forward == nil || *in.Forward != 1 {
		t.Errorf("expected forward 1, got %v", in.Forward)
	}
	if in.Strafe == nil || *in.Strafe != -0.5 {
		t.Errorf("expected strafe -0.5 from a numeric string, got %v", in.Strafe)
	}
	if in.Turn == nil || *in.Turn != 2 {
		t.Errorf("expected turn 2 from a numeric string, got %v", in.Turn)
	}
	if !in.Sprint || !in.Shoot {
		t.Errorf("expected truthy sprint and shoot, got %+v", in)
	}
}

func TestDecodeInputBadFieldReadsAsMissing(t *testing.T) {
	in := decodeInput(json.RawMessage(`{"forward":"fast","strafe":[1],"turn":null,"sprint":0,"shoot":""}`))
	if in.Forward != nil || in.Strafe != nil || in.Turn != nil {
		t.Errorf("expected unusable axes to read as missing, got %+v", in)
	}
	if in.Sprint || in.Shoot {
		t.Errorf("expected falsy flags, got %+v", in)
	}

	for _, raw := range []string{``, `null`, `"go"`, `[1,2]`, `{bad json`} {
		if got := decodeInput(json.RawMessage(raw)); got != (ClientInput{}) {
			t.Errorf("payload %q: expected zero input, got %+v", raw, got)
		}
	}
}

func TestLooseBoolTruthiness(t *testing.T) {
	cases := map[string]bool{
		`true`:  true,
		`false`: false,
		`1`:     true,
		`0`:     false,
		`-2.5`:  true,
		`"x"`:   true,
		`""`:    false,
		`null`:  false,
		`{}`:    true,
		`[]`:    true,
	}
	for raw, want := range cases {
		if got := looseBool(json.RawMessage(raw)); got != want {
			t.Errorf("looseBool(%s) = %v, want %v", raw, got, want)
		}
	}
}

func TestDecodePoseAndShoot(t *testing.T) {
	pose := decodePose(json.RawMessage(`{"x":"3.5","y":true,"z":-2,"rotY":"1e400","hp":100}`))
	if pose.X == nil || *pose.X != 3.5 {
		t.Errorf("expected x 3.5, got %v", pose.X)
	}
	if pose.Y != nil {
		t.Errorf("expected boolean y to read as missing, got %v", *pose.Y)
	}
	if pose.Z == nil || *pose.Z != -2 {
		t.Errorf("expected z -2, got %v", pose.Z)
	}
	if pose.RotY != nil {
		t.Errorf("expected infinite rotY dropped, got %v", *pose.RotY)
	}

	aim := decodeShoot(json.RawMessage(`{"dirX":"0","dirY":{},"dirZ":1}`))
	if aim.DirX == nil || *aim.DirX != 0 || aim.DirY != nil || aim.DirZ == nil || *aim.DirZ != 1 {
		t.Errorf("unexpected aim %+v", aim)
	}
}
