package metadata

// OpCode is an ECMA-335 opcode value. Two-byte opcodes keep their 0xFE prefix
// in the high byte.
type OpCode uint16

const (
	OpNop           OpCode = 0x00
	OpBreak         OpCode = 0x01
	OpLdarg0        OpCode = 0x02
	OpLdarg1        OpCode = 0x03
	OpLdarg2        OpCode = 0x04
	OpLdarg3        OpCode = 0x05
	OpLdloc0        OpCode = 0x06
	OpLdloc1        OpCode = 0x07
	OpLdloc2        OpCode = 0x08
	OpLdloc3        OpCode = 0x09
	OpStloc0        OpCode = 0x0a
	OpStloc1        OpCode = 0x0b
	OpStloc2        OpCode = 0x0c
	OpStloc3        OpCode = 0x0d
	OpLdargS        OpCode = 0x0e
	OpLdargaS       OpCode = 0x0f
	OpStargS        OpCode = 0x10
	OpLdlocS        OpCode = 0x11
	OpLdlocaS       OpCode = 0x12
	OpStlocS        OpCode = 0x13
	OpLdnull        OpCode = 0x14
	OpLdcI4M1       OpCode = 0x15
	OpLdcI40        OpCode = 0x16
	OpLdcI41        OpCode = 0x17
	OpLdcI42        OpCode = 0x18
	OpLdcI43        OpCode = 0x19
	OpLdcI44        OpCode = 0x1a
	OpLdcI45        OpCode = 0x1b
	OpLdcI46        OpCode = 0x1c
	OpLdcI47        OpCode = 0x1d
	OpLdcI48        OpCode = 0x1e
	OpLdcI4S        OpCode = 0x1f
	OpLdcI4         OpCode = 0x20
	OpLdcI8         OpCode = 0x21
	OpLdcR4         OpCode = 0x22
	OpLdcR8         OpCode = 0x23
	OpDup           OpCode = 0x25
	OpPop           OpCode = 0x26
	OpJmp           OpCode = 0x27
	OpCall          OpCode = 0x28
	OpCalli         OpCode = 0x29
	OpRet           OpCode = 0x2a
	OpBrS           OpCode = 0x2b
	OpBrfalseS      OpCode = 0x2c
	OpBrtrueS       OpCode = 0x2d
	OpBeqS          OpCode = 0x2e
	OpBgeS          OpCode = 0x2f
	OpBgtS          OpCode = 0x30
	OpBleS          OpCode = 0x31
	OpBltS          OpCode = 0x32
	OpBneUnS        OpCode = 0x33
	OpBgeUnS        OpCode = 0x34
	OpBgtUnS        OpCode = 0x35
	OpBleUnS        OpCode = 0x36
	OpBltUnS        OpCode = 0x37
	OpBr            OpCode = 0x38
	OpBrfalse       OpCode = 0x39
	OpBrtrue        OpCode = 0x3a
	OpBeq           OpCode = 0x3b
	OpBge           OpCode = 0x3c
	OpBgt           OpCode = 0x3d
	OpBle           OpCode = 0x3e
	OpBlt           OpCode = 0x3f
	OpBneUn         OpCode = 0x40
	OpBgeUn         OpCode = 0x41
	OpBgtUn         OpCode = 0x42
	OpBleUn         OpCode = 0x43
	OpBltUn         OpCode = 0x44
	OpSwitch        OpCode = 0x45
	OpLdindI1       OpCode = 0x46
	OpLdindU1       OpCode = 0x47
	OpLdindI2       OpCode = 0x48
	OpLdindU2       OpCode = 0x49
	OpLdindI4       OpCode = 0x4a
	OpLdindU4       OpCode = 0x4b
	OpLdindI8       OpCode = 0x4c
	OpLdindI        OpCode = 0x4d
	OpLdindR4       OpCode = 0x4e
	OpLdindR8       OpCode = 0x4f
	OpLdindRef      OpCode = 0x50
	OpStindRef      OpCode = 0x51
	OpStindI1       OpCode = 0x52
	OpStindI2       OpCode = 0x53
	OpStindI4       OpCode = 0x54
	OpStindI8       OpCode = 0x55
	OpStindR4       OpCode = 0x56
	OpStindR8       OpCode = 0x57
	OpAdd           OpCode = 0x58
	OpSub           OpCode = 0x59
	OpMul           OpCode = 0x5a
	OpDiv           OpCode = 0x5b
	OpDivUn         OpCode = 0x5c
	OpRem           OpCode = 0x5d
	OpRemUn         OpCode = 0x5e
	OpAnd           OpCode = 0x5f
	OpOr            OpCode = 0x60
	OpXor           OpCode = 0x61
	OpShl           OpCode = 0x62
	OpShr           OpCode = 0x63
	OpShrUn         OpCode = 0x64
	OpNeg           OpCode = 0x65
	OpNot           OpCode = 0x66
	OpConvI1        OpCode = 0x67
	OpConvI2        OpCode = 0x68
	OpConvI4        OpCode = 0x69
	OpConvI8        OpCode = 0x6a
	OpConvR4        OpCode = 0x6b
	OpConvR8        OpCode = 0x6c
	OpConvU4        OpCode = 0x6d
	OpConvU8        OpCode = 0x6e
	OpCallvirt      OpCode = 0x6f
	OpCpobj         OpCode = 0x70
	OpLdobj         OpCode = 0x71
	OpLdstr         OpCode = 0x72
	OpNewobj        OpCode = 0x73
	OpCastclass     OpCode = 0x74
	OpIsinst        OpCode = 0x75
	OpConvRUn       OpCode = 0x76
	OpUnbox         OpCode = 0x79
	OpThrow         OpCode = 0x7a
	OpLdfld         OpCode = 0x7b
	OpLdflda        OpCode = 0x7c
	OpStfld         OpCode = 0x7d
	OpLdsfld        OpCode = 0x7e
	OpLdsflda       OpCode = 0x7f
	OpStsfld        OpCode = 0x80
	OpStobj         OpCode = 0x81
	OpConvOvfI1Un   OpCode = 0x82
	OpConvOvfI2Un   OpCode = 0x83
	OpConvOvfI4Un   OpCode = 0x84
	OpConvOvfI8Un   OpCode = 0x85
	OpConvOvfU1Un   OpCode = 0x86
	OpConvOvfU2Un   OpCode = 0x87
	OpConvOvfU4Un   OpCode = 0x88
	OpConvOvfU8Un   OpCode = 0x89
	OpConvOvfIUn    OpCode = 0x8a
	OpConvOvfUUn    OpCode = 0x8b
	OpBox           OpCode = 0x8c
	OpNewarr        OpCode = 0x8d
	OpLdlen         OpCode = 0x8e
	OpLdelema       OpCode = 0x8f
	OpLdelemI1      OpCode = 0x90
	OpLdelemU1      OpCode = 0x91
	OpLdelemI2      OpCode = 0x92
	OpLdelemU2      OpCode = 0x93
	OpLdelemI4      OpCode = 0x94
	OpLdelemU4      OpCode = 0x95
	OpLdelemI8      OpCode = 0x96
	OpLdelemI       OpCode = 0x97
	OpLdelemR4      OpCode = 0x98
	OpLdelemR8      OpCode = 0x99
	OpLdelemRef     OpCode = 0x9a
	OpStelemI       OpCode = 0x9b
	OpStelemI1      OpCode = 0x9c
	OpStelemI2      OpCode = 0x9d
	OpStelemI4      OpCode = 0x9e
	OpStelemI8      OpCode = 0x9f
	OpStelemR4      OpCode = 0xa0
	OpStelemR8      OpCode = 0xa1
	OpStelemRef     OpCode = 0xa2
	OpLdelem        OpCode = 0xa3
	OpStelem        OpCode = 0xa4
	OpUnboxAny      OpCode = 0xa5
	OpConvOvfI1     OpCode = 0xb3
	OpConvOvfU1     OpCode = 0xb4
	OpConvOvfI2     OpCode = 0xb5
	OpConvOvfU2     OpCode = 0xb6
	OpConvOvfI4     OpCode = 0xb7
	OpConvOvfU4     OpCode = 0xb8
	OpConvOvfI8     OpCode = 0xb9
	OpConvOvfU8     OpCode = 0xba
	OpRefanyval     OpCode = 0xc2
	OpCkfinite      OpCode = 0xc3
	OpMkrefany      OpCode = 0xc6
	OpLdtoken       OpCode = 0xd0
	OpConvU2        OpCode = 0xd1
	OpConvU1        OpCode = 0xd2
	OpConvI         OpCode = 0xd3
	OpConvOvfI      OpCode = 0xd4
	OpConvOvfU      OpCode = 0xd5
	OpAddOvf        OpCode = 0xd6
	OpAddOvfUn      OpCode = 0xd7
	OpMulOvf        OpCode = 0xd8
	OpMulOvfUn      OpCode = 0xd9
	OpSubOvf        OpCode = 0xda
	OpSubOvfUn      OpCode = 0xdb
	OpEndfinally    OpCode = 0xdc
	OpLeave         OpCode = 0xdd
	OpLeaveS        OpCode = 0xde
	OpStindI        OpCode = 0xdf
	OpConvU         OpCode = 0xe0
	OpArglist       OpCode = 0xfe00
	OpCeq           OpCode = 0xfe01
	OpCgt           OpCode = 0xfe02
	OpCgtUn         OpCode = 0xfe03
	OpClt           OpCode = 0xfe04
	OpCltUn         OpCode = 0xfe05
	OpLdftn         OpCode = 0xfe06
	OpLdvirtftn     OpCode = 0xfe07
	OpLdarg         OpCode = 0xfe09
	OpLdarga        OpCode = 0xfe0a
	OpStarg         OpCode = 0xfe0b
	OpLdloc         OpCode = 0xfe0c
	OpLdloca        OpCode = 0xfe0d
	OpStloc         OpCode = 0xfe0e
	OpLocalloc      OpCode = 0xfe0f
	OpEndfilter     OpCode = 0xfe11
	OpUnaligned     OpCode = 0xfe12
	OpVolatile      OpCode = 0xfe13
	OpTail          OpCode = 0xfe14
	OpInitobj       OpCode = 0xfe15
	OpConstrained   OpCode = 0xfe16
	OpCpblk         OpCode = 0xfe17
	OpInitblk       OpCode = 0xfe18
	OpNo            OpCode = 0xfe19
	OpRethrow       OpCode = 0xfe1a
	OpSizeof        OpCode = 0xfe1c
	OpRefanytype    OpCode = 0xfe1d
	OpReadonly      OpCode = 0xfe1e
)

var opNames = map[OpCode]string{
	OpNop:          "nop",
	OpBreak:        "break",
	OpLdarg0:       "ldarg.0",
	OpLdarg1:       "ldarg.1",
	OpLdarg2:       "ldarg.2",
	OpLdarg3:       "ldarg.3",
	OpLdloc0:       "ldloc.0",
	OpLdloc1:       "ldloc.1",
	OpLdloc2:       "ldloc.2",
	OpLdloc3:       "ldloc.3",
	OpStloc0:       "stloc.0",
	OpStloc1:       "stloc.1",
	OpStloc2:       "stloc.2",
	OpStloc3:       "stloc.3",
	OpLdargS:       "ldarg.s",
	OpLdargaS:      "ldarga.s",
	OpStargS:       "starg.s",
	OpLdlocS:       "ldloc.s",
	OpLdlocaS:      "ldloca.s",
	OpStlocS:       "stloc.s",
	OpLdnull:       "ldnull",
	OpLdcI4M1:      "ldc.i4.m1",
	OpLdcI40:       "ldc.i4.0",
	OpLdcI41:       "ldc.i4.1",
	OpLdcI42:       "ldc.i4.2",
	OpLdcI43:       "ldc.i4.3",
	OpLdcI44:       "ldc.i4.4",
	OpLdcI45:       "ldc.i4.5",
	OpLdcI46:       "ldc.i4.6",
	OpLdcI47:       "ldc.i4.7",
	OpLdcI48:       "ldc.i4.8",
	OpLdcI4S:       "ldc.i4.s",
	OpLdcI4:        "ldc.i4",
	OpLdcI8:        "ldc.i8",
	OpLdcR4:        "ldc.r4",
	OpLdcR8:        "ldc.r8",
	OpDup:          "dup",
	OpPop:          "pop",
	OpJmp:          "jmp",
	OpCall:         "call",
	OpCalli:        "calli",
	OpRet:          "ret",
	OpBrS:          "br.s",
	OpBrfalseS:     "brfalse.s",
	OpBrtrueS:      "brtrue.s",
	OpBeqS:         "beq.s",
	OpBgeS:         "bge.s",
	OpBgtS:         "bgt.s",
	OpBleS:         "ble.s",
	OpBltS:         "blt.s",
	OpBneUnS:       "bne.un.s",
	OpBgeUnS:       "bge.un.s",
	OpBgtUnS:       "bgt.un.s",
	OpBleUnS:       "ble.un.s",
	OpBltUnS:       "blt.un.s",
	OpBr:           "br",
	OpBrfalse:      "brfalse",
	OpBrtrue:       "brtrue",
	OpBeq:          "beq",
	OpBge:          "bge",
	OpBgt:          "bgt",
	OpBle:          "ble",
	OpBlt:          "blt",
	OpBneUn:        "bne.un",
	OpBgeUn:        "bge.un",
	OpBgtUn:        "bgt.un",
	OpBleUn:        "ble.un",
	OpBltUn:        "blt.un",
	OpSwitch:       "switch",
	OpLdindI1:      "ldind.i1",
	OpLdindU1:      "ldind.u1",
	OpLdindI2:      "ldind.i2",
	OpLdindU2:      "ldind.u2",
	OpLdindI4:      "ldind.i4",
	OpLdindU4:      "ldind.u4",
	OpLdindI8:      "ldind.i8",
	OpLdindI:       "ldind.i",
	OpLdindR4:      "ldind.r4",
	OpLdindR8:      "ldind.r8",
	OpLdindRef:     "ldind.ref",
	OpStindRef:     "stind.ref",
	OpStindI1:      "stind.i1",
	OpStindI2:      "stind.i2",
	OpStindI4:      "stind.i4",
	OpStindI8:      "stind.i8",
	OpStindR4:      "stind.r4",
	OpStindR8:      "stind.r8",
	OpAdd:          "add",
	OpSub:          "sub",
	OpMul:          "mul",
	OpDiv:          "div",
	OpDivUn:        "div.un",
	OpRem:          "rem",
	OpRemUn:        "rem.un",
	OpAnd:          "and",
	OpOr:           "or",
	OpXor:          "xor",
	OpShl:          "shl",
	OpShr:          "shr",
	OpShrUn:        "shr.un",
	OpNeg:          "neg",
	OpNot:          "not",
	OpConvI1:       "conv.i1",
	OpConvI2:       "conv.i2",
	OpConvI4:       "conv.i4",
	OpConvI8:       "conv.i8",
	OpConvR4:       "conv.r4",
	OpConvR8:       "conv.r8",
	OpConvU4:       "conv.u4",
	OpConvU8:       "conv.u8",
	OpCallvirt:     "callvirt",
	OpCpobj:        "cpobj",
	OpLdobj:        "ldobj",
	OpLdstr:        "ldstr",
	OpNewobj:       "newobj",
	OpCastclass:    "castclass",
	OpIsinst:       "isinst",
	OpConvRUn:      "conv.r.un",
	OpUnbox:        "unbox",
	OpThrow:        "throw",
	OpLdfld:        "ldfld",
	OpLdflda:       "ldflda",
	OpStfld:        "stfld",
	OpLdsfld:       "ldsfld",
	OpLdsflda:      "ldsflda",
	OpStsfld:       "stsfld",
	OpStobj:        "stobj",
	OpConvOvfI1Un:  "conv.ovf.i1.un",
	OpConvOvfI2Un:  "conv.ovf.i2.un",
	OpConvOvfI4Un:  "conv.ovf.i4.un",
	OpConvOvfI8Un:  "conv.ovf.i8.un",
	OpConvOvfU1Un:  "conv.ovf.u1.un",
	OpConvOvfU2Un:  "conv.ovf.u2.un",
	OpConvOvfU4Un:  "conv.ovf.u4.un",
	OpConvOvfU8Un:  "conv.ovf.u8.un",
	OpConvOvfIUn:   "conv.ovf.i.un",
	OpConvOvfUUn:   "conv.ovf.u.un",
	OpBox:          "box",
	OpNewarr:       "newarr",
	OpLdlen:        "ldlen",
	OpLdelema:      "ldelema",
	OpLdelemI1:     "ldelem.i1",
	OpLdelemU1:     "ldelem.u1",
	OpLdelemI2:     "ldelem.i2",
	OpLdelemU2:     "ldelem.u2",
	OpLdelemI4:     "ldelem.i4",
	OpLdelemU4:     "ldelem.u4",
	OpLdelemI8:     "ldelem.i8",
	OpLdelemI:      "ldelem.i",
	OpLdelemR4:     "ldelem.r4",
	OpLdelemR8:     "ldelem.r8",
	OpLdelemRef:    "ldelem.ref",
	OpStelemI:      "stelem.i",
	OpStelemI1:     "stelem.i1",
	OpStelemI2:     "stelem.i2",
	OpStelemI4:     "stelem.i4",
	OpStelemI8:     "stelem.i8",
	OpStelemR4:     "stelem.r4",
	OpStelemR8:     "stelem.r8",
	OpStelemRef:    "stelem.ref",
	OpLdelem:       "ldelem",
	OpStelem:       "stelem",
	OpUnboxAny:     "unbox.any",
	OpConvOvfI1:    "conv.ovf.i1",
	OpConvOvfU1:    "conv.ovf.u1",
	OpConvOvfI2:    "conv.ovf.i2",
	OpConvOvfU2:    "conv.ovf.u2",
	OpConvOvfI4:    "conv.ovf.i4",
	OpConvOvfU4:    "conv.ovf.u4",
	OpConvOvfI8:    "conv.ovf.i8",
	OpConvOvfU8:    "conv.ovf.u8",
	OpRefanyval:    "refanyval",
	OpCkfinite:     "ckfinite",
	OpMkrefany:     "mkrefany",
	OpLdtoken:      "ldtoken",
	OpConvU2:       "conv.u2",
	OpConvU1:       "conv.u1",
	OpConvI:        "conv.i",
	OpConvOvfI:     "conv.ovf.i",
	OpConvOvfU:     "conv.ovf.u",
	OpAddOvf:       "add.ovf",
	OpAddOvfUn:     "add.ovf.un",
	OpMulOvf:       "mul.ovf",
	OpMulOvfUn:     "mul.ovf.un",
	OpSubOvf:       "sub.ovf",
	OpSubOvfUn:     "sub.ovf.un",
	OpEndfinally:   "endfinally",
	OpLeave:        "leave",
	OpLeaveS:       "leave.s",
	OpStindI:       "stind.i",
	OpConvU:        "conv.u",
	OpArglist:      "arglist",
	OpCeq:          "ceq",
	OpCgt:          "cgt",
	OpCgtUn:        "cgt.un",
	OpClt:          "clt",
	OpCltUn:        "clt.un",
	OpLdftn:        "ldftn",
	OpLdvirtftn:    "ldvirtftn",
	OpLdarg:        "ldarg",
	OpLdarga:       "ldarga",
	OpStarg:        "starg",
	OpLdloc:        "ldloc",
	OpLdloca:       "ldloca",
	OpStloc:        "stloc",
	OpLocalloc:     "localloc",
	OpEndfilter:    "endfilter",
	OpUnaligned:    "unaligned.",
	OpVolatile:     "volatile.",
	OpTail:         "tail.",
	OpInitobj:      "initobj",
	OpConstrained:  "constrained.",
	OpCpblk:        "cpblk",
	OpInitblk:      "initblk",
	OpNo:           "no.",
	OpRethrow:      "rethrow",
	OpSizeof:       "sizeof",
	OpRefanytype:   "refanytype",
	OpReadonly:     "readonly.",
}

