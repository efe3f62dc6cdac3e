// Package objmap decodes Analyze object maps: the binary segmentation
// mask format (.obj) storing one or more labeled voxel volumes plus
// per-label metadata.
//
// # Overview
//
// An object map file is a big-endian fixed-layout format: a version
// stamp, the map extents, a table of 152-byte object records, then the
// voxel data. Files stamped before 20050829 hold exactly one volume;
// later files declare an explicit volume count and concatenate one
// equal-length block per volume. This package decodes the whole file
// in a single pass and exposes the result as shaped voxel volumes and
// an ordered object table.
//
// # Quick Start
//
//	m, err := objmap.Open("mask.obj")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vol := m.Data()
//	d, h, w := vol.Shape()
//	fmt.Printf("%dx%dx%d, %d objects\n", d, h, w, len(m.Objects()))
//
// The deferred form produces the same decoded state:
//
//	m := objmap.New()
//	if err := m.FromFile("mask.obj"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Voxel Encodings
//
// Raw packed voxel streams are the default. Files written by the
// reference tool run-length encode their voxel data; pass
// objmap.WithEncoding(objmap.EncodingRLE) to decode those.
//
// # Errors
//
// Every malformed-input condition wraps ErrFormat, so a single
// errors.Is check distinguishes bad files from I/O failures. A failed
// parse never leaves partially decoded state behind.
package objmap
