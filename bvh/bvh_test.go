package bvh

import (
	"errors"
	"math/rand/v2"
	"runtime"
	"testing"

	"github.com/achilleasa/lux/geometry"
	"github.com/achilleasa/lux/types"
	"github.com/chewxy/math32"
)

// Generate a soup of small random triangles plus a tessellated ground plane.
func randomSoup(t testing.TB, seed uint64, numTris int) *geometry.MeshSet {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rnd := func(min, max float32) float32 {
		return min + rng.Float32()*(max-min)
	}

	positions := make([]types.Vec3, 0, numTris*3)
	faces := make([][3]uint32, 0, numTris)
	for i := 0; i < numTris; i++ {
		center := types.Vec3{rnd(-10, 10), rnd(-10, 10), rnd(-10, 10)}
		base := uint32(len(positions))
		for v := 0; v < 3; v++ {
			positions = append(positions, center.Add(types.Vec3{rnd(-1, 1), rnd(-1, 1), rnd(-1, 1)}))
		}
		faces = append(faces, [3]uint32{base, base + 1, base + 2})
	}
	soup, err := geometry.NewMesh("soup", positions, nil, nil, faces)
	if err != nil {
		t.Fatal(err)
	}

	set, err := geometry.NewMeshSet(soup, groundPlane(t, 8, -12))
	if err != nil {
		t.Fatal(err)
	}
	return set
}

// A grid of quads on the plane y = height covering [-12, 12] in x and z.
func groundPlane(t testing.TB, cells int, height float32) *geometry.Mesh {
	var (
		positions []types.Vec3
		normals   []types.Vec3
		faces     [][3]uint32
		step      = 24.0 / float32(cells)
	)
	for z := 0; z <= cells; z++ {
		for x := 0; x <= cells; x++ {
			positions = append(positions, types.Vec3{-12 + float32(x)*step, height, -12 + float32(z)*step})
			normals = append(normals, types.Vec3{0, 1, 0})
		}
	}
	row := uint32(cells + 1)
	for z := uint32(0); z < uint32(cells); z++ {
		for x := uint32(0); x < uint32(cells); x++ {
			v0 := z*row + x
			faces = append(faces,
				[3]uint32{v0, v0 + row, v0 + row + 1},
				[3]uint32{v0, v0 + row + 1, v0 + 1},
			)
		}
	}

	m, err := geometry.NewMesh("ground", positions, normals, nil, faces)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func randomRays(seed uint64, count int) []types.Ray {
	rng := rand.New(rand.NewPCG(seed, 42))
	rnd := func(min, max float32) float32 {
		return min + rng.Float32()*(max-min)
	}

	rays := make([]types.Ray, 0, count)
	for i := 0; i < count; i++ {
		origin := types.Vec3{rnd(-30, 30), rnd(-30, 30), rnd(-30, 30)}
		target := types.Vec3{rnd(-12, 12), rnd(-12, 12), rnd(-12, 12)}
		rays = append(rays, types.NewRay(origin, target.Sub(origin).Normalize()))
	}

	// Rays parallel to the ground plane, both inside it and just above it
	for _, y := range []float32{-12, -11.999} {
		rays = append(rays,
			types.NewRay(types.Vec3{-20, y, 0.3}, types.Vec3{1, 0, 0}),
			types.NewRay(types.Vec3{0.3, y, -20}, types.Vec3{0, 0, 1}),
		)
	}

	// Rays grazing the shared diagonal edge of ground plane cells
	step := float32(24.0 / 8)
	for cell := 0; cell < 8; cell++ {
		c := -12 + (float32(cell)+0.5)*step
		rays = append(rays, types.NewRay(types.Vec3{c, 5, c}, types.Vec3{0, -1, 0}))
		rays = append(rays, types.NewRay(types.Vec3{c - 1, 0, c - 1}, types.Vec3{1, -12, 1}.Normalize()))
	}

	return rays
}

// Closest hit via a linear scan over every triangle.
func bruteForce(geom geometry.Geometry, ray types.Ray) (float32, bool) {
	ray.AdaptEpsilon()
	found := false
	for idx := uint32(0); idx < geom.TriangleCount(); idx++ {
		if _, dist, hit := geom.Intersect(idx, &ray); hit {
			ray.MaxT = dist
			found = true
		}
	}
	return ray.MaxT, found
}

func verifiedOptions() Options {
	opts := DefaultOptions()
	opts.VerifyRanges = true
	return opts
}

func TestSlotsFor(t *testing.T) {
	for _, n := range []uint32{0, 1, 2, 7, 1000} {
		if got := SlotsFor(n); got != 2*n {
			t.Fatalf("expected SlotsFor(%d) to be %d; got %d", n, 2*n, got)
		}
	}
}

func TestBuildValidTree(t *testing.T) {
	type spec struct {
		numTris       int
		compact       bool
		expConcurrent bool
	}

	specs := []spec{
		{1, false, false},
		{2, true, false},
		{3, false, false},
		{40, true, false},
		{500, false, false},
		{500, true, false},
		// Large enough to exercise the parallel sort
		{6000, true, true},
	}

	for index, s := range specs {
		geom := randomSoup(t, uint64(index+1), s.numTris)

		opts := verifiedOptions()
		opts.Compact = s.compact
		tree, err := Build(geom, opts)
		if err != nil {
			t.Fatalf("[spec %d] build failed: %v", index, err)
		}

		if err = tree.Validate(); err != nil {
			t.Fatalf("[spec %d] %v", index, err)
		}

		if tree.BBox() != geom.BBox() {
			t.Fatalf("[spec %d] expected tree bbox %v; got %v", index, geom.BBox(), tree.BBox())
		}

		stats := tree.Stats()
		if stats.Slots != int(SlotsFor(geom.TriangleCount())) {
			t.Fatalf("[spec %d] expected %d reserved slots; got %d", index, SlotsFor(geom.TriangleCount()), stats.Slots)
		}
		if s.compact && len(tree.Nodes()) != stats.Nodes {
			t.Fatalf("[spec %d] expected compacted arena to hold %d nodes; got %d", index, stats.Nodes, len(tree.Nodes()))
		}
		if stats.GuardedTasks == 0 {
			t.Fatalf("[spec %d] expected range guard to verify at least one task", index)
		}
		if s.expConcurrent && runtime.GOMAXPROCS(0) > 1 && stats.MaxConcurrentTasks < 2 {
			t.Fatalf("[spec %d] expected range guard to observe concurrent tasks; got %d", index, stats.MaxConcurrentTasks)
		}
	}
}

// Walk an uncompacted arena and check that each subtree covering k
// primitives stays inside the 2k slots reserved at its root.
func TestSubtreePlacement(t *testing.T) {
	geom := randomSoup(t, 7, 1500)
	opts := verifiedOptions()
	opts.Compact = false
	tree, err := Build(geom, opts)
	if err != nil {
		t.Fatal(err)
	}

	nodes := tree.Nodes()
	var walk func(idx uint32) (prims, maxIdx uint32)
	walk = func(idx uint32) (uint32, uint32) {
		node := &nodes[idx]
		if node.IsLeaf() {
			return node.Count(), idx
		}
		leftPrims, leftMax := walk(idx + 1)
		rightPrims, rightMax := walk(node.RightChild())

		if exp := idx + SlotsFor(leftPrims); node.RightChild() != exp {
			t.Fatalf("expected right child of node %d to be at %d; got %d", idx, exp, node.RightChild())
		}
		if leftMax >= node.RightChild() {
			t.Fatalf("left subtree of node %d spills into right subtree slots (max index %d, right child %d)", idx, leftMax, node.RightChild())
		}

		prims := leftPrims + rightPrims
		maxIdx := rightMax
		if limit := idx + SlotsFor(prims); maxIdx >= limit {
			t.Fatalf("subtree at %d covering %d primitives uses slot %d; limit is %d", idx, prims, maxIdx, limit)
		}
		return prims, maxIdx
	}

	if prims, _ := walk(0); prims != geom.TriangleCount() {
		t.Fatalf("expected tree to cover %d primitives; got %d", geom.TriangleCount(), prims)
	}

	used := 0
	for i := range nodes {
		if !nodes[i].IsUnused() {
			used++
		}
	}
	if used != tree.Stats().Nodes {
		t.Fatalf("expected %d used slots; got %d", tree.Stats().Nodes, used)
	}
}

func TestRangeGuardDetectsOverlap(t *testing.T) {
	g := newRangeGuard()
	id, err := g.acquire(span{0, 10}, span{0, 19})
	if err != nil {
		t.Fatal(err)
	}

	if _, err = g.acquire(span{5, 12}, span{40, 50}); !errors.Is(err, ErrOverlappingRanges) {
		t.Fatalf("expected ErrOverlappingRanges for primitive overlap; got %v", err)
	}
	if _, err = g.acquire(span{10, 12}, span{18, 22}); !errors.Is(err, ErrOverlappingRanges) {
		t.Fatalf("expected ErrOverlappingRanges for slot overlap; got %v", err)
	}

	// Adjacent ranges do not overlap
	if _, err = g.acquire(span{10, 12}, span{19, 22}); err != nil {
		t.Fatalf("expected adjacent ranges to be accepted; got %v", err)
	}

	g.release(id)
	if _, err = g.acquire(span{0, 10}, span{0, 19}); err != nil {
		t.Fatalf("expected released range to be reusable; got %v", err)
	}
}

func TestShadowQueryAgreesWithClosestHit(t *testing.T) {
	geom := randomSoup(t, 3, 800)
	tree, err := Build(geom, verifiedOptions())
	if err != nil {
		t.Fatal(err)
	}

	for index, ray := range randomRays(3, 2000) {
		its := Intersection{T: -1}
		shadowHit := tree.RayIntersect(ray, &its, true)
		if its.T != -1 || its.Mesh != nil {
			t.Fatalf("[ray %d] expected shadow query to leave the intersection record untouched; got %v", index, &its)
		}

		closestHit := tree.RayIntersect(ray, &its, false)
		if shadowHit != closestHit {
			t.Fatalf("[ray %d] expected shadow query result %t to match closest hit result %t", index, shadowHit, closestHit)
		}
	}
}

func TestClosestHitMatchesBruteForce(t *testing.T) {
	for _, compact := range []bool{false, true} {
		geom := randomSoup(t, 11, 1200)
		opts := verifiedOptions()
		opts.Compact = compact
		tree, err := Build(geom, opts)
		if err != nil {
			t.Fatal(err)
		}

		hits := 0
		for index, ray := range randomRays(11, 3000) {
			expT, expHit := bruteForce(geom, ray)

			var its Intersection
			hit := tree.RayIntersect(ray, &its, false)
			if hit != expHit {
				t.Fatalf("[compact %t, ray %d] expected hit to be %t; got %t (%v)", compact, index, expHit, hit, ray)
			}
			if !hit {
				continue
			}
			hits++

			if math32.Abs(its.T-expT) > 1e-4*math32.Max(1, expT) {
				t.Fatalf("[compact %t, ray %d] expected closest hit at t=%g; got %g", compact, index, expT, its.T)
			}
			if p := ray.At(its.T); p.Sub(its.P).Len() > 1e-3 {
				t.Fatalf("[compact %t, ray %d] expected hit position %v; got %v", compact, index, p, its.P)
			}
			if n := its.GeoFrame.N.Len(); math32.Abs(n-1) > 1e-4 {
				t.Fatalf("[compact %t, ray %d] expected unit geometric normal; got length %g", compact, index, n)
			}
		}

		if hits == 0 {
			t.Fatalf("[compact %t] expected some rays to hit the scene", compact)
		}
	}
}

func TestGroundPlaneShadingFrame(t *testing.T) {
	ground := groundPlane(t, 4, 0)
	tree, err := Build(ground, verifiedOptions())
	if err != nil {
		t.Fatal(err)
	}

	var its Intersection
	ray := types.NewRay(types.Vec3{1.3, 5, -2.1}, types.Vec3{0, -1, 0})
	if !tree.RayIntersect(ray, &its, false) {
		t.Fatal("expected ray to hit the ground plane")
	}
	if its.Mesh != ground {
		t.Fatalf("expected hit mesh to be %q", ground.Name)
	}
	if math32.Abs(its.T-5) > 1e-5 {
		t.Fatalf("expected hit at t=5; got %g", its.T)
	}
	if its.ShFrame.N.Sub(types.Vec3{0, 1, 0}).Len() > 1e-5 {
		t.Fatalf("expected shading normal (0, 1, 0); got %v", its.ShFrame.N)
	}
}

func TestEmptyGeometry(t *testing.T) {
	empty, err := geometry.NewMeshSet()
	if err != nil {
		t.Fatal(err)
	}

	tree, err := Build(empty, verifiedOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Nodes()) != 0 {
		t.Fatalf("expected no nodes; got %d", len(tree.Nodes()))
	}
	if err = tree.Validate(); err != nil {
		t.Fatal(err)
	}

	var its Intersection
	ray := types.NewRay(types.Vec3{}, types.Vec3{0, 0, 1})
	if tree.RayIntersect(ray, &its, false) || tree.RayIntersect(ray, &its, true) {
		t.Fatal("expected empty tree to never report a hit")
	}
}

// A quad next to 32 copies of one triangle. By hand, with SA(root) = 22,
// splitting after the two quad triangles along x costs
// 2 + (2*2 + 32*2)/22 = 5.09 which beats every other candidate and the leaf
// cost of 34. Neither child can be split profitably.
func TestSAHSplitDecision(t *testing.T) {
	quad, err := geometry.NewMesh(
		"quad",
		[]types.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		nil,
		nil,
		[][3]uint32{{0, 1, 2}, {0, 2, 3}},
	)
	if err != nil {
		t.Fatal(err)
	}

	dupFaces := make([][3]uint32, 32)
	for i := range dupFaces {
		dupFaces[i] = [3]uint32{0, 1, 2}
	}
	dups, err := geometry.NewMesh("dups", []types.Vec3{{10, 0, 0}, {11, 0, 0}, {10, 1, 0}}, nil, nil, dupFaces)
	if err != nil {
		t.Fatal(err)
	}

	geom, err := geometry.NewMeshSet(quad, dups)
	if err != nil {
		t.Fatal(err)
	}

	type spec struct {
		compact  bool
		expRight uint32
	}
	for index, s := range []spec{{false, 4}, {true, 2}} {
		opts := verifiedOptions()
		opts.Compact = s.compact
		tree, err := Build(geom, opts)
		if err != nil {
			t.Fatal(err)
		}

		nodes := tree.Nodes()
		root := nodes[0]
		if root.IsLeaf() {
			t.Fatalf("[spec %d] expected root to be an inner node", index)
		}
		if root.Axis() != 0 {
			t.Fatalf("[spec %d] expected split axis 0; got %d", index, root.Axis())
		}
		if root.RightChild() != s.expRight {
			t.Fatalf("[spec %d] expected right child at %d; got %d", index, s.expRight, root.RightChild())
		}

		left, right := nodes[1], nodes[root.RightChild()]
		if !left.IsLeaf() || left.Start() != 0 || left.Count() != 2 {
			t.Fatalf("[spec %d] expected left child to be a leaf with the 2 quad triangles; got %v", index, left)
		}
		if !right.IsLeaf() || right.Start() != 2 || right.Count() != 32 {
			t.Fatalf("[spec %d] expected right child to be a leaf with the 32 duplicates; got %v", index, right)
		}

		for pos := uint32(0); pos < 2; pos++ {
			if mesh := geom.FindMesh(tree.Indices()[pos]); mesh != 0 {
				t.Fatalf("[spec %d] expected permutation slot %d to reference the quad; got mesh %d", index, pos, mesh)
			}
		}

		stats := tree.Stats()
		if stats.Nodes != 3 || stats.Leaves != 2 || stats.MaxLeafSize != 32 {
			t.Fatalf("[spec %d] expected 3 nodes, 2 leaves and max leaf size 32; got %d, %d, %d", index, stats.Nodes, stats.Leaves, stats.MaxLeafSize)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	geom := randomSoup(t, 5, 3000)

	first, err := Build(geom, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for run := 0; run < 3; run++ {
		tree, err := Build(geom, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		if len(tree.Nodes()) != len(first.Nodes()) {
			t.Fatalf("[run %d] expected %d nodes; got %d", run, len(first.Nodes()), len(tree.Nodes()))
		}
		for i := range first.Indices() {
			if tree.Indices()[i] != first.Indices()[i] {
				t.Fatalf("[run %d] permutation differs at slot %d", run, i)
			}
		}
	}
}

func BenchmarkBuild(b *testing.B) {
	geom := randomSoup(b, 1, 20000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Build(geom, DefaultOptions()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRayIntersect(b *testing.B) {
	geom := randomSoup(b, 1, 20000)
	tree, err := Build(geom, DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	rays := randomRays(1, 1024)

	var its Intersection
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.RayIntersect(rays[i%len(rays)], &its, false)
	}
}

func TestSingleTriangle(t *testing.T) {
	tri, err := geometry.NewMesh("tri", []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, nil, nil, [][3]uint32{{0, 1, 2}})
	if err != nil {
		t.Fatal(err)
	}

	tree, err := Build(tri, verifiedOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Nodes()) != 1 || !tree.Nodes()[0].IsLeaf() {
		t.Fatalf("expected a single leaf; got %v", tree.Nodes())
	}

	var its Intersection
	ray := types.NewRay(types.Vec3{0.2, 0.2, 1}, types.Vec3{0, 0, -1})
	if !tree.RayIntersect(ray, &its, false) {
		t.Fatal("expected ray to hit the triangle")
	}
	if exp := (types.Vec2{0.2, 0.2}); its.UV.Sub(exp).Dot(its.UV.Sub(exp)) > 1e-10 {
		t.Fatalf("expected barycentric uv %v; got %v", exp, its.UV)
	}
}

func TestSubMillimetreTriangleNormal(t *testing.T) {
	tri, err := geometry.NewMesh("tiny", []types.Vec3{{0, 0, 0}, {5e-4, 0, 0}, {0, 5e-4, 0}}, nil, nil, [][3]uint32{{0, 1, 2}})
	if err != nil {
		t.Fatal(err)
	}

	tree, err := Build(tri, verifiedOptions())
	if err != nil {
		t.Fatal(err)
	}

	var its Intersection
	ray := types.NewRay(types.Vec3{1e-4, 1e-4, 1}, types.Vec3{0, 0, -1})
	if !tree.RayIntersect(ray, &its, false) {
		t.Fatal("expected ray to hit the triangle")
	}

	exp := types.Vec3{0, 0, 1}
	if its.GeoFrame.N.Sub(exp).Len() > 1e-5 {
		t.Fatalf("expected geometric normal %v; got %v", exp, its.GeoFrame.N)
	}
	if its.ShFrame.N.Sub(exp).Len() > 1e-5 {
		t.Fatalf("expected shading normal %v; got %v", exp, its.ShFrame.N)
	}
}
