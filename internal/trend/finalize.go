package trend

// finalize applies the minimum-edge-count rule and packages surviving paths
// as TrendLines: caller indices in path order, aligned point records, and
// the constituent segments. Discarded paths are omitted entirely; their
// points and edges are not reassigned to other lines.
func finalize(pts []Point, edges []edge, paths []path, minEdges int) []TrendLine {
	var lines []TrendLine
	for _, p := range paths {
		if len(p.edges) < minEdges {
			continue
		}
		line := TrendLine{
			Vertices: make([]int, len(p.verts)),
			Points:   make([]Point, len(p.verts)),
			Segments: make([]Segment, len(p.edges)),
		}
		for i, v := range p.verts {
			line.Vertices[i] = pts[v].Index
			line.Points[i] = pts[v]
		}
		for i, ei := range p.edges {
			e := edges[ei]
			line.Segments[i] = Segment{
				From:    pts[p.verts[i]].Index,
				To:      pts[p.verts[i+1]].Index,
				Length:  e.length,
				Azimuth: e.azimuth,
			}
		}
		lines = append(lines, line)
	}
	return lines
}
