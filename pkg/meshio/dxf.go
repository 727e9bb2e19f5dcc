package meshio

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/chazu/trellis/pkg/grid"
)

// SaveDXF exports a surface to DXF for use in CAD tools. Polygonal
// faces become 3DFACE entities (triangulated where needed, since a
// 3DFACE holds at most four corners) and line cells become LINE
// entities, each on its own layer.
func SaveDXF(path string, p *grid.PolyData) error {
	d := dxf.NewDrawing()

	if p.NFaces() > 0 {
		if _, err := d.AddLayer("FACES", color.White, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("meshio: dxf: %w", err)
		}
		faces := p.Faces()
		points := p.Points()
		for i := 0; i < len(faces); {
			n := int(faces[i])
			ids := faces[i+1 : i+1+n]
			// Fan out polygons with more than four corners.
			for j := 1; j+1 < n; j += 2 {
				corners := make([][]float64, 0, 4)
				for _, k := range []int64{ids[0], ids[j], ids[j+1]} {
					v := points[k]
					corners = append(corners, []float64{v.X, v.Y, v.Z})
				}
				if j+2 < n {
					v := points[ids[j+2]]
					corners = append(corners, []float64{v.X, v.Y, v.Z})
				}
				if _, err := d.ThreeDFace(corners); err != nil {
					return fmt.Errorf("meshio: dxf face: %w", err)
				}
			}
			i += 1 + n
		}
	}

	if p.NLines() > 0 {
		if _, err := d.AddLayer("LINES", color.White, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("meshio: dxf: %w", err)
		}
		lines := p.Lines()
		points := p.Points()
		for i := 0; i < len(lines); {
			n := int(lines[i])
			ids := lines[i+1 : i+1+n]
			for j := 0; j+1 < n; j++ {
				a, b := points[ids[j]], points[ids[j+1]]
				if _, err := d.Line(a.X, a.Y, a.Z, b.X, b.Y, b.Z); err != nil {
					return fmt.Errorf("meshio: dxf line: %w", err)
				}
			}
			i += 1 + n
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("meshio: dxf save: %w", err)
	}
	return nil
}
