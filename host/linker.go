package host

import (
	"fmt"
	"reflect"

	"github.com/ethereum/go-ethereum/log"
	"github.com/go-interpreter/wagon/exec"
	"github.com/go-interpreter/wagon/wasm"
)

var hostFunctionList = []string{
	"storage_store",
	"storage_load",
	"storage_has",
	"storage_remove",
}

var debugFunctionList = []string{
	"log_message",
}

var hostTypes = &wasm.SectionTypes{
	Entries: []wasm.FunctionSig{
		{
			ParamTypes:  []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32, wasm.ValueTypeI32, wasm.ValueTypeI32},
			ReturnTypes: []wasm.ValueType{},
		},
		{
			ParamTypes:  []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32, wasm.ValueTypeI32},
			ReturnTypes: []wasm.ValueType{wasm.ValueTypeI32},
		},
		{
			ParamTypes:  []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32},
			ReturnTypes: []wasm.ValueType{wasm.ValueTypeI32},
		},
		{
			ParamTypes:  []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32},
			ReturnTypes: []wasm.ValueType{},
		},
	},
}

// moduleResolver satisfies imports from the "env" and "debug" modules
// with native implementations backed by the invocation's storage.
func moduleResolver(st *Storage) wasm.ResolveFunc {
	return func(name string) (*wasm.Module, error) {
		switch name {
		case "env":
			return envModule(st), nil
		case "debug":
			return debugModule(), nil
		}
		return nil, fmt.Errorf("unknown import module %q", name)
	}
}

func envModule(st *Storage) *wasm.Module {
	m := wasm.NewModule()
	m.Types = hostTypes
	m.FunctionIndexSpace = storageFuncs(st)

	entries := make(map[string]wasm.ExportEntry)
	for idx, name := range hostFunctionList {
		entries[name] = wasm.ExportEntry{
			FieldStr: name,
			Kind:     wasm.ExternalFunction,
			Index:    uint32(idx),
		}
	}
	m.Export = &wasm.SectionExports{Entries: entries}
	return m
}

func debugModule() *wasm.Module {
	m := wasm.NewModule()
	m.Types = hostTypes
	m.FunctionIndexSpace = []wasm.Function{
		{
			Sig: &hostTypes.Entries[3],
			Host: reflect.ValueOf(func(p *exec.Process, ptr, length int32) {
				log.Info("contract log", "message", string(readMem(p, ptr, length)))
			}),
			Body: &wasm.FunctionBody{},
		},
	}
	entries := make(map[string]wasm.ExportEntry)
	for idx, name := range debugFunctionList {
		entries[name] = wasm.ExportEntry{
			FieldStr: name,
			Kind:     wasm.ExternalFunction,
			Index:    uint32(idx),
		}
	}
	m.Export = &wasm.SectionExports{Entries: entries}
	return m
}

func storageFuncs(st *Storage) []wasm.Function {
	return []wasm.Function{
		{
			Sig: &hostTypes.Entries[0],
			Host: reflect.ValueOf(func(p *exec.Process, kp, kl, vp, vl int32) {
				storageStore(p, st, kp, kl, vp, vl)
			}),
			Body: &wasm.FunctionBody{},
		},
		{
			Sig: &hostTypes.Entries[1],
			Host: reflect.ValueOf(func(p *exec.Process, kp, kl, vp int32) int32 {
				return storageLoad(p, st, kp, kl, vp)
			}),
			Body: &wasm.FunctionBody{},
		},
		{
			Sig: &hostTypes.Entries[2],
			Host: reflect.ValueOf(func(p *exec.Process, kp, kl int32) int32 {
				return storageHas(p, st, kp, kl)
			}),
			Body: &wasm.FunctionBody{},
		},
		{
			Sig: &hostTypes.Entries[3],
			Host: reflect.ValueOf(func(p *exec.Process, kp, kl int32) {
				storageRemove(p, st, kp, kl)
			}),
			Body: &wasm.FunctionBody{},
		},
	}
}

func readMem(p *exec.Process, offset, length int32) []byte {
	buf := make([]byte, length)
	p.ReadAt(buf, int64(offset))
	return buf
}

func storageStore(p *exec.Process, st *Storage, keyPtr, keyLen, valPtr, valLen int32) {
	key := readMem(p, keyPtr, keyLen)
	val := readMem(p, valPtr, valLen)
	if err := st.Put(key, val); err != nil {
		log.Error("storage_store", "key", string(key), "err", err)
	}
	log.Trace("storage_store", "key", string(key), "len", valLen)
}

// storageLoad copies the value for the key into contract memory and
// returns its length, or -1 when the key is absent.
func storageLoad(p *exec.Process, st *Storage, keyPtr, keyLen, valPtr int32) int32 {
	key := readMem(p, keyPtr, keyLen)
	val, ok := st.Get(key)
	if !ok {
		log.Trace("storage_load miss", "key", string(key))
		return -1
	}
	p.WriteAt(val, int64(valPtr))
	return int32(len(val))
}

func storageHas(p *exec.Process, st *Storage, keyPtr, keyLen int32) int32 {
	if st.Has(readMem(p, keyPtr, keyLen)) {
		return 1
	}
	return 0
}

func storageRemove(p *exec.Process, st *Storage, keyPtr, keyLen int32) {
	key := readMem(p, keyPtr, keyLen)
	if err := st.Delete(key); err != nil {
		log.Error("storage_remove", "key", string(key), "err", err)
	}
}
