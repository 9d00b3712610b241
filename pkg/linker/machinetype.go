package linker

import (
	"emlin/pkg/emelf"
	"emlin/pkg/utils"
)

type MachineType = uint8

const (
	MachineTypeMera400 MachineType = iota
	MachineTypeMX16    MachineType = iota
)

func GetMachineTypeFromCPU(cpu emelf.CPU) MachineType {
	if cpu == emelf.CPUMX16 {
		return MachineTypeMX16
	}
	return MachineTypeMera400
}

// MergeMachineType escalates the link target when a module demands the
// stricter CPU. The MX-16 requirement is sticky.
func MergeMachineType(current, required MachineType) MachineType {
	if required == MachineTypeMX16 {
		return MachineTypeMX16
	}
	return current
}

func MachineTypeCPU(m MachineType) emelf.CPU {
	if m == MachineTypeMX16 {
		return emelf.CPUMX16
	}
	utils.Assert(m == MachineTypeMera400, "unknown machine type %d", m)
	return emelf.CPUMera400
}

type MachineTypeStringer struct {
	MachineType
}

func (m MachineTypeStringer) String() string {
	return MachineTypeCPU(m.MachineType).String()
}
