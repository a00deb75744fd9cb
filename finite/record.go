package finite

import (
	"fmt"
	"math"
	"strconv"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Command names the transition to fire and how many times
type Command struct {
	Action     string
	Multiplier int64
}

// AddressAmount is a debit (negative) or credit of an address
type AddressAmount struct {
	Address string
	Amount  int64
}

// AddressACL asserts that an identity holds a role on an address
type AddressACL struct {
	Address string
	DID     string
	Role    string
}

// Record is the content of a transaction
type Record struct {
	Nonce   string
	Digest  string
	Schema  string
	Command *Command
	Input   []AddressAmount
	Output  []AddressAmount
	DidACL  []AddressACL
}

// Struct converts the record into a protobuf Struct
func (r *Record) Struct() (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"nonce":  r.Nonce,
		"schema": r.Schema,
		"input":  amountsToList(r.Input),
		"output": amountsToList(r.Output),
	}
	if r.Digest != "" {
		fields["digest"] = r.Digest
	}
	if r.Command != nil {
		fields["command"] = map[string]interface{}{
			"action":     r.Command.Action,
			"multiplier": strconv.FormatInt(r.Command.Multiplier, 10),
		}
	}

	acl := make([]interface{}, 0, len(r.DidACL))
	for _, entry := range r.DidACL {
		acl = append(acl, map[string]interface{}{
			"address": entry.Address,
			"did":     entry.DID,
			"role":    entry.Role,
		})
	}
	fields["didAcl"] = acl

	return structpb.NewStruct(fields)
}

// Marshal encodes the record as deterministic protobuf bytes
func (r *Record) Marshal() ([]byte, error) {
	s, err := r.Struct()
	if err != nil {
		return nil, err
	}

	return proto.MarshalOptions{Deterministic: true}.Marshal(s)
}

// UnmarshalRecord decodes bytes produced by Record.Marshal
func UnmarshalRecord(data []byte) (*Record, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return RecordFromStruct(s)
}

// RecordFromStruct converts a protobuf Struct back into a record
func RecordFromStruct(s *structpb.Struct) (*Record, error) {
	fields := s.GetFields()
	r := &Record{
		Nonce:  fields["nonce"].GetStringValue(),
		Digest: fields["digest"].GetStringValue(),
		Schema: fields["schema"].GetStringValue(),
	}

	if command := fields["command"].GetStructValue(); command != nil {
		multiplier, err := integer(command.GetFields()["multiplier"])
		if err != nil {
			return nil, fmt.Errorf("invalid multiplier: %w", err)
		}
		r.Command = &Command{
			Action:     command.GetFields()["action"].GetStringValue(),
			Multiplier: multiplier,
		}
	}

	var err error
	if r.Input, err = amountsFromList(fields["input"]); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if r.Output, err = amountsFromList(fields["output"]); err != nil {
		return nil, fmt.Errorf("invalid output: %w", err)
	}

	r.DidACL = []AddressACL{}
	for _, v := range fields["didAcl"].GetListValue().GetValues() {
		entry := v.GetStructValue()
		if entry == nil {
			return nil, fmt.Errorf("invalid didAcl entry %v", v)
		}
		r.DidACL = append(r.DidACL, AddressACL{
			Address: entry.GetFields()["address"].GetStringValue(),
			DID:     entry.GetFields()["did"].GetStringValue(),
			Role:    entry.GetFields()["role"].GetStringValue(),
		})
	}

	return r, nil
}

func amountsToList(amounts []AddressAmount) []interface{} {
	list := make([]interface{}, 0, len(amounts))
	for _, a := range amounts {
		list = append(list, map[string]interface{}{"address": a.Address, "amount": strconv.FormatInt(a.Amount, 10)})
	}

	return list
}

func amountsFromList(v *structpb.Value) ([]AddressAmount, error) {
	amounts := []AddressAmount{}
	for _, item := range v.GetListValue().GetValues() {
		entry := item.GetStructValue()
		if entry == nil {
			return nil, fmt.Errorf("entry %v is not an object", item)
		}
		amount, err := integer(entry.GetFields()["amount"])
		if err != nil {
			return nil, fmt.Errorf("invalid amount: %w", err)
		}
		amounts = append(amounts, AddressAmount{
			Address: entry.GetFields()["address"].GetStringValue(),
			Amount:  amount,
		})
	}

	return amounts, nil
}

// maxExactFloat is the largest magnitude a float64 holds without rounding
const maxExactFloat = 1 << 53

// integer reads an int64 written as a decimal string. Plain numbers are
// accepted only when integral and exactly representable.
func integer(v *structpb.Value) (int64, error) {
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return strconv.ParseInt(kind.StringValue, 10, 64)
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n != math.Trunc(n) || math.Abs(n) > maxExactFloat {
			return 0, fmt.Errorf("%v is not an exact integer", n)
		}
		return int64(n), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected value %v", v)
	}
}
