package encode

// Discriminator values written to the "tag" key of every object node.
const (
	TagType      = "Type"
	TagClass     = "Class"
	TagFunction  = "Function"
	TagField     = "Field"
	TagParameter = "Parameter"
	TagEnum      = "Enum"
	TagEnumValue = "EnumValue"
)

// Reference names another definition by index. Base is only set in the flat
// index, where it holds a class's direct base.
type Reference struct {
	Name  string  `json:"name" yaml:"name"`
	Index uint32  `json:"index" yaml:"index"`
	Base  *uint32 `json:"base,omitempty" yaml:"base,omitempty"`
}

type TypeNode struct {
	Tag   string    `json:"tag" yaml:"tag"`
	Kind  string    `json:"kind" yaml:"kind"`
	Name  *string   `json:"name,omitempty" yaml:"name,omitempty"` // Prim and Class kinds, may be ""
	Index *uint32   `json:"index,omitempty" yaml:"index,omitempty"` // Class kind only
	Size  *uint32   `json:"size,omitempty" yaml:"size,omitempty"`   // StaticArray kind only
	Inner *TypeNode `json:"inner,omitempty" yaml:"inner,omitempty"`
}

type ClassNode struct {
	Tag        string         `json:"tag" yaml:"tag"`
	Name       string         `json:"name" yaml:"name"`
	Visibility string         `json:"visibility" yaml:"visibility"`
	Bases      []Reference    `json:"bases" yaml:"bases"`
	Fields     []FieldNode    `json:"fields" yaml:"fields"`
	Methods    []FunctionNode `json:"methods" yaml:"methods"`
	IsNative   bool           `json:"isNative" yaml:"isNative"`
	IsAbstract bool           `json:"isAbstract" yaml:"isAbstract"`
	IsFinal    bool           `json:"isFinal" yaml:"isFinal"`
	IsStruct   bool           `json:"isStruct" yaml:"isStruct"`
}

type FunctionNode struct {
	Tag        string          `json:"tag" yaml:"tag"`
	Name       string          `json:"name" yaml:"name"`
	Parameters []ParameterNode `json:"parameters" yaml:"parameters"`
	ReturnType *TypeNode       `json:"returnType,omitempty" yaml:"returnType,omitempty"`
	Visibility string          `json:"visibility" yaml:"visibility"`
	IsStatic   bool            `json:"isStatic" yaml:"isStatic"`
	IsFinal    bool            `json:"isFinal" yaml:"isFinal"`
	IsExec     bool            `json:"isExec" yaml:"isExec"`
	IsCallback bool            `json:"isCallback" yaml:"isCallback"`
	IsNative   bool            `json:"isNative" yaml:"isNative"`
	Source     *string         `json:"source,omitempty" yaml:"source,omitempty"`
}

type ParameterNode struct {
	Tag        string   `json:"tag" yaml:"tag"`
	Name       string   `json:"name" yaml:"name"`
	Type       TypeNode `json:"type" yaml:"type"`
	IsOut      bool     `json:"isOut" yaml:"isOut"`
	IsOptional bool     `json:"isOptional" yaml:"isOptional"`
}

type FieldNode struct {
	Tag          string   `json:"tag" yaml:"tag"`
	Name         string   `json:"name" yaml:"name"`
	Type         TypeNode `json:"type" yaml:"type"`
	IsNative     bool     `json:"isNative" yaml:"isNative"`
	IsEdit       bool     `json:"isEdit" yaml:"isEdit"`
	IsInline     bool     `json:"isInline" yaml:"isInline"`
	IsConst      bool     `json:"isConst" yaml:"isConst"`
	IsRep        bool     `json:"isRep" yaml:"isRep"`
	IsPersistent bool     `json:"isPersistent" yaml:"isPersistent"`
}

type EnumNode struct {
	Tag     string          `json:"tag" yaml:"tag"`
	Name    string          `json:"name" yaml:"name"`
	Members []EnumValueNode `json:"members" yaml:"members"`
}

type EnumValueNode struct {
	Tag   string `json:"tag" yaml:"tag"`
	Name  string `json:"name" yaml:"name"`
	Value int64  `json:"value" yaml:"value"`
}
