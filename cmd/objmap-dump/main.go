// Command objmap-dump prints the header and object table of an
// Analyze object-map file as JSON or YAML. It is a thin wrapper over
// the objmap package; voxel data is decoded but not printed.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/twinfer/objmap-plugin/pkg/objmap"
)

type dumpObject struct {
	Name       string   `json:"name" yaml:"name"`
	Label      int      `json:"label" yaml:"label"`
	Visible    bool     `json:"visible" yaml:"visible"`
	Shades     uint32   `json:"shades" yaml:"shades"`
	StartColor [3]int32 `json:"start_color" yaml:"start_color"`
	EndColor   [3]int32 `json:"end_color" yaml:"end_color"`
	Opacity    float32  `json:"opacity" yaml:"opacity"`
}

type dump struct {
	VersionCode uint32       `json:"version_code" yaml:"version_code"`
	Version     int          `json:"version" yaml:"version"`
	Width       int          `json:"width" yaml:"width"`
	Height      int          `json:"height" yaml:"height"`
	Depth       int          `json:"depth" yaml:"depth"`
	Volumes     int          `json:"volumes" yaml:"volumes"`
	Objects     []dumpObject `json:"objects" yaml:"objects"`
}

func main() {
	format := flag.String("format", "json", "output format: json or yaml")
	encoding := flag.String("encoding", "raw", "voxel stream encoding: raw or rle")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-format json|yaml] [-encoding raw|rle] FILE\n", os.Args[0])
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *format, *encoding); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path, format, encodingName string) error {
	encoding, err := objmap.ParseEncoding(encodingName)
	if err != nil {
		return err
	}

	m, err := objmap.Open(path, objmap.WithEncoding(encoding))
	if err != nil {
		return err
	}

	hdr := m.Header()
	out := dump{
		VersionCode: hdr.VersionCode,
		Version:     hdr.Version,
		Width:       hdr.Width,
		Height:      hdr.Height,
		Depth:       hdr.Depth,
		Volumes:     hdr.VolumeCount,
	}
	for _, obj := range m.Objects() {
		out.Objects = append(out.Objects, dumpObject{
			Name:       obj.Name,
			Label:      obj.Label,
			Visible:    obj.Visible(),
			Shades:     obj.Shades,
			StartColor: [3]int32{obj.StartRed, obj.StartGreen, obj.StartBlue},
			EndColor:   [3]int32{obj.EndRed, obj.EndGreen, obj.EndBlue},
			Opacity:    obj.Opacity,
		})
	}

	switch format {
	case "json":
		enc, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(enc))
	case "yaml":
		enc, err := yaml.Marshal(out)
		if err != nil {
			return err
		}
		fmt.Print(string(enc))
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}
