package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Трансляция: неподдерживаемые конструкции
	TrInfo                   Code = 1000
	TrUnsupportedInstruction Code = 1001
	TrUnsupportedElement     Code = 1002
	TrUnsupportedConstant    Code = 1003
	TrBodilessMethod         Code = 1004
	TrVirtualGenericMethod   Code = 1005
	TrMultiDimArray          Code = 1006
	TrUnsupportedRegion      Code = 1007

	// Граф типов
	TrMissingDependency Code = 1100
	TrValueCycle        Code = 1101
	TrInheritanceCycle  Code = 1102

	// Имена
	TrEmptyIdentifier Code = 1200
	TrMangleCollision Code = 1201

	// Импорт тел методов
	TrStackMismatch   Code = 1300
	TrStackUnderflow  Code = 1301
	TrBadBranchTarget Code = 1302
	TrBadOperand      Code = 1303

	// I/O
	IOLoadImage   Code = 4001
	IODecodeImage Code = 4002
	IOWriteOutput Code = 4003
	IOCache       Code = 4004

	// Конфигурация
	CfgInfo          Code = 5000
	CfgBadManifest   Code = 5001
	CfgNoModules     Code = 5002
	CfgDuplicateName Code = 5003
)

var (
	codeDescription = map[Code]string{
		UnknownCode:              "Unknown error",
		TrInfo:                   "Translation information",
		TrUnsupportedInstruction: "Unsupported instruction",
		TrUnsupportedElement:     "Unsupported element type",
		TrUnsupportedConstant:    "Unsupported constant kind",
		TrBodilessMethod:         "Method has no body and is not runtime-provided",
		TrVirtualGenericMethod:   "Virtual generic methods are not supported",
		TrMultiDimArray:          "Multi-dimensional arrays are not supported",
		TrUnsupportedRegion:      "Unsupported exception region",
		TrMissingDependency:      "Unresolved type dependency",
		TrValueCycle:             "Recursive value-type layout",
		TrInheritanceCycle:       "Cyclic inheritance",
		TrEmptyIdentifier:        "Empty identifier",
		TrMangleCollision:        "Mangled name collision",
		TrStackMismatch:          "Evaluation stack shape mismatch",
		TrStackUnderflow:         "Evaluation stack underflow",
		TrBadBranchTarget:        "Branch target is not an instruction boundary",
		TrBadOperand:             "Invalid operand types",
		IOLoadImage:              "Failed to read module image",
		IODecodeImage:            "Failed to decode module image",
		IOWriteOutput:            "Failed to write output",
		IOCache:                  "Output cache failure",
		CfgInfo:                  "Configuration information",
		CfgBadManifest:           "Malformed natsu.toml",
		CfgNoModules:             "No modules to translate",
		CfgDuplicateName:         "Duplicate module name",
	}
)

func (c Code) ID() string {
	ic := int(c)
	switch {
	case ic == 0:
		return "E0000"
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("TR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
