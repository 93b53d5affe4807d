// Package export writes generated meshes to interchange formats.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/chrismile/trajvis/pkg/math"
)

// WriteOBJ writes an indexed triangle mesh as Wavefront OBJ. Normals
// are optional; when present they must be parallel to positions and
// faces reference them per vertex.
func WriteOBJ(w io.Writer, name string, positions, normals []math.Vec3, indices []uint32) error {
	if len(normals) != 0 && len(normals) != len(positions) {
		return fmt.Errorf("%d normals for %d positions", len(normals), len(positions))
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "o %s\n", name)
	for _, p := range positions {
		fmt.Fprintf(bw, "v %g %g %g\n", p.X, p.Y, p.Z)
	}
	for _, n := range normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
	}

	// OBJ indices are 1-based.
	withNormals := len(normals) != 0
	for i := 0; i < len(indices); i += 3 {
		a, b, c := indices[i]+1, indices[i+1]+1, indices[i+2]+1
		if withNormals {
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
		} else {
			fmt.Fprintf(bw, "f %d %d %d\n", a, b, c)
		}
	}
	return bw.Flush()
}

// SaveOBJ writes the mesh to a file, creating or truncating it.
func SaveOBJ(path, name string, positions, normals []math.Vec3, indices []uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteOBJ(f, name, positions, normals, indices); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
