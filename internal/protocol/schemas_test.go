package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	callSchema := compile("call.schema.json")
	resultSchema := compile("result.schema.json")
	eventSchema := compile("event.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "computer_name":"miner-1",
	  "capabilities":{"max_queue":64}
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "computer_id":"C000001",
	  "world_params":{
	    "tick_rate_hz":20,
	    "day_ticks":24000,
	    "world_boundary_r":256,
	    "seed":1337
	  }
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var call any
	_ = json.Unmarshal([]byte(`{
	  "type":"CALL",
	  "protocol_version":"1.0",
	  "id":"c42",
	  "module":"os",
	  "fn":"setAlarm",
	  "args":[6.5]
	}`), &call)
	validate(callSchema, call)

	var okResult any
	_ = json.Unmarshal([]byte(`{
	  "type":"RESULT",
	  "protocol_version":"1.0",
	  "call_id":"c42",
	  "ok":true,
	  "values":[3]
	}`), &okResult)
	validate(resultSchema, okResult)

	var failResult any
	_ = json.Unmarshal([]byte(`{
	  "type":"RESULT",
	  "protocol_version":"1.0",
	  "call_id":"c43",
	  "ok":false,
	  "code":"E_BAD_REQUEST",
	  "message":"number out of range"
	}`), &failResult)
	validate(resultSchema, failResult)

	var event any
	_ = json.Unmarshal([]byte(`{
	  "type":"EVENT",
	  "protocol_version":"1.0",
	  "tick":1200,
	  "name":"alarm",
	  "args":[3]
	}`), &event)
	validate(eventSchema, event)
}

func TestSchemas_RejectBadMessages(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		s, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", name))
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	callSchema := compile("call.schema.json")
	resultSchema := compile("result.schema.json")

	var badModule any
	_ = json.Unmarshal([]byte(`{
	  "type":"CALL",
	  "protocol_version":"1.0",
	  "id":"c1",
	  "module":"redstone",
	  "fn":"getInput"
	}`), &badModule)
	if err := callSchema.Validate(badModule); err == nil {
		t.Fatalf("unknown module passed validation")
	}

	var badCode any
	_ = json.Unmarshal([]byte(`{
	  "type":"RESULT",
	  "protocol_version":"1.0",
	  "call_id":"c1",
	  "ok":false,
	  "code":"E_MADE_UP"
	}`), &badCode)
	if err := resultSchema.Validate(badCode); err == nil {
		t.Fatalf("unknown error code passed validation")
	}
}
