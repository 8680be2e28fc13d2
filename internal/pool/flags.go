package pool

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

type ClassFlags uint16

const (
	ClassNative ClassFlags = 1 << iota
	ClassAbstract
	ClassFinal
	ClassStruct
)

func (f ClassFlags) IsNative() bool   { return f&ClassNative != 0 }
func (f ClassFlags) IsAbstract() bool { return f&ClassAbstract != 0 }
func (f ClassFlags) IsFinal() bool    { return f&ClassFinal != 0 }
func (f ClassFlags) IsStruct() bool   { return f&ClassStruct != 0 }

type FunctionFlags uint32

const (
	FunctionStatic FunctionFlags = 1 << iota
	FunctionFinal
	FunctionExec
	FunctionCallback
	FunctionNative
)

func (f FunctionFlags) IsStatic() bool   { return f&FunctionStatic != 0 }
func (f FunctionFlags) IsFinal() bool    { return f&FunctionFinal != 0 }
func (f FunctionFlags) IsExec() bool     { return f&FunctionExec != 0 }
func (f FunctionFlags) IsCallback() bool { return f&FunctionCallback != 0 }
func (f FunctionFlags) IsNative() bool   { return f&FunctionNative != 0 }

type FieldFlags uint16

const (
	FieldNative FieldFlags = 1 << iota
	FieldEditable
	FieldInline
	FieldConst
	FieldReplicated
	FieldPersistent
)

func (f FieldFlags) IsNative() bool     { return f&FieldNative != 0 }
func (f FieldFlags) IsEditable() bool   { return f&FieldEditable != 0 }
func (f FieldFlags) IsInline() bool     { return f&FieldInline != 0 }
func (f FieldFlags) IsConst() bool      { return f&FieldConst != 0 }
func (f FieldFlags) IsReplicated() bool { return f&FieldReplicated != 0 }
func (f FieldFlags) IsPersistent() bool { return f&FieldPersistent != 0 }

type ParameterFlags uint8

const (
	ParameterOut ParameterFlags = 1 << iota
	ParameterOptional
)

func (f ParameterFlags) IsOut() bool      { return f&ParameterOut != 0 }
func (f ParameterFlags) IsOptional() bool { return f&ParameterOptional != 0 }

var (
	classFlagNames = map[string]ClassFlags{
		"native":   ClassNative,
		"abstract": ClassAbstract,
		"final":    ClassFinal,
		"struct":   ClassStruct,
	}
	functionFlagNames = map[string]FunctionFlags{
		"static":   FunctionStatic,
		"final":    FunctionFinal,
		"exec":     FunctionExec,
		"callback": FunctionCallback,
		"native":   FunctionNative,
	}
	fieldFlagNames = map[string]FieldFlags{
		"native":     FieldNative,
		"editable":   FieldEditable,
		"inline":     FieldInline,
		"const":      FieldConst,
		"replicated": FieldReplicated,
		"persistent": FieldPersistent,
	}
	parameterFlagNames = map[string]ParameterFlags{
		"out":      ParameterOut,
		"optional": ParameterOptional,
	}
)

func parseFlags[F ~uint8 | ~uint16 | ~uint32](names []string, table map[string]F) (F, error) {
	var out F
	for _, name := range names {
		bit, ok := table[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, errors.Errorf("unknown flag %q", name)
		}
		out |= bit
	}
	return out, nil
}
