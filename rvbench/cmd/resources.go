package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"sort"

	"github.com/google/pprof/profile"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/rvbench/harness"
)

type hotspot struct {
	Function string
	Flat     int64
}

type usageReport struct {
	CPUPercent float64
	RSS        uint64
	Unit       string
	Hotspots   []hotspot
}

type usage struct {
	profiling bool
	buf       *bytes.Buffer
	startErr  error
}

// startUsage starts a CPU profile when asked to.
func startUsage(profiling bool) *usage {
	u := &usage{profiling: profiling, buf: new(bytes.Buffer)}

	if profiling {
		u.startErr = pprof.StartCPUProfile(u.buf)
	}

	return u
}

func (u *usage) stop() (usageReport, error) {
	report := usageReport{}

	if u.profiling && u.startErr == nil {
		pprof.StopCPUProfile()
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return report, errors.Wrap(err, "inspecting process")
	}

	report.CPUPercent, err = proc.CPUPercent()
	if err != nil {
		return report, errors.Wrap(err, "reading CPU usage")
	}

	mem, err := proc.MemoryInfo()
	if err != nil {
		return report, errors.Wrap(err, "reading memory usage")
	}
	report.RSS = mem.RSS

	if !u.profiling {
		return report, nil
	}

	if u.startErr != nil {
		return report, errors.Wrap(u.startErr, "starting CPU profile")
	}

	prof, err := profile.ParseData(u.buf.Bytes())
	if err != nil {
		return report, errors.Wrap(err, "parsing CPU profile")
	}

	report.Unit, report.Hotspots = topFunctions(prof, 10)

	return report, nil
}

// topFunctions sums the last sample value per leaf function and returns the
// n largest.
func topFunctions(prof *profile.Profile, n int) (string, []hotspot) {
	if len(prof.SampleType) == 0 {
		return "", nil
	}

	valueIndex := len(prof.SampleType) - 1
	unit := prof.SampleType[valueIndex].Unit

	flat := make(map[string]int64)
	for _, s := range prof.Sample {
		name := "unknown"
		if len(s.Location) > 0 && len(s.Location[0].Line) > 0 &&
			s.Location[0].Line[0].Function != nil {
			name = s.Location[0].Line[0].Function.Name
		}

		flat[name] += s.Value[valueIndex]
	}

	spots := make([]hotspot, 0, len(flat))
	for name, v := range flat {
		spots = append(spots, hotspot{Function: name, Flat: v})
	}

	sort.Slice(spots, func(i, j int) bool {
		if spots[i].Flat != spots[j].Flat {
			return spots[i].Flat > spots[j].Flat
		}
		return spots[i].Function < spots[j].Function
	})

	if len(spots) > n {
		spots = spots[:n]
	}

	return unit, spots
}

func (r usageReport) print(w io.Writer, resources bool) {
	if resources {
		fmt.Fprintf(w, "CPU %.1f%%, RSS %.1f MiB\n",
			r.CPUPercent, float64(r.RSS)/(1<<20))
	}

	if len(r.Hotspots) == 0 {
		return
	}

	fmt.Fprintf(w, "Top functions (%s):\n", r.Unit)
	for _, h := range r.Hotspots {
		fmt.Fprintf(w, "  %12d  %s\n", h.Flat, h.Function)
	}
}

// dumpState writes the harness and its immediate fields as JSON.
func dumpState(h *harness.Harness, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(h)
	serializer.SetMaxDepth(2)

	if err := serializer.Serialize(f); err != nil {
		return errors.Wrapf(err, "serializing harness into %s", path)
	}

	return nil
}
