// Package pprof adds profiling support to the sifon program.
package pprof

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/izreit/sifon/pkg/prog"
)

// Program adds the -cpuprofile and -allocsprofile flags. It never runs by
// itself; the profiles are written when the next program terminates.
type Program struct {
	cpuProfile    string
	allocsProfile string
}

func (p *Program) RegisterFlags(f *prog.FlagSet) {
	f.StringVar(&p.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	f.StringVar(&p.allocsProfile, "allocsprofile", "", "write memory allocation profile to file")
}

func (p *Program) Run(fds [3]*os.File, _ []string) error {
	var cleanups []func([3]*os.File)
	add := func(what, path string, start func(*os.File) func()) {
		if path == "" {
			return
		}
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(fds[2], "Warning: cannot create %s profile: %v\n", what, err)
			fmt.Fprintf(fds[2], "Continuing without %s profiling.\n", what)
			return
		}
		stop := start(f)
		cleanups = append(cleanups, func([3]*os.File) {
			stop()
			f.Close()
		})
	}
	add("CPU", p.cpuProfile, func(f *os.File) func() {
		pprof.StartCPUProfile(f)
		return pprof.StopCPUProfile
	})
	add("memory allocation", p.allocsProfile, func(f *os.File) func() {
		return func() { pprof.Lookup("allocs").WriteTo(f, 0) }
	})
	return prog.NextProgram(cleanups...)
}
