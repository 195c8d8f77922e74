package reader

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/lux/asset"
	"github.com/achilleasa/lux/geometry"
	"github.com/achilleasa/lux/log"
	"github.com/achilleasa/lux/types"
)

// Per-vertex index tuple (position, uv, normal) used to share vertices
// between faces of the same mesh. Missing indices are -1.
type vertexKey [3]int

// A face corner as it appears in the input.
type corner struct {
	key vertexKey
	p   types.Vec3
	n   types.Vec3
	uv  types.Vec2
}

// Accumulates the faces of a single wavefront object/group.
type meshBuilder struct {
	name string

	// Triangle corners in input order. Corners of faces without normals
	// carry the generated face normal and a -1 normal index.
	triangles [][3]corner

	// The input face each triangle came from. Quads emit two triangles.
	sourceFace []int

	hasNormals bool
	hasUVs     bool
}

func newMeshBuilder(name string) *meshBuilder {
	return &meshBuilder{name: name}
}

func (mb *meshBuilder) addTriangle(sourceFace int, tri [3]corner) {
	mb.triangles = append(mb.triangles, tri)
	mb.sourceFace = append(mb.sourceFace, sourceFace)
}

// Assemble the indexed mesh. Vertices with identical keys are shared. A
// generated face normal is only kept when other faces of the mesh define
// normals; its corners are then private to their source face.
func (mb *meshBuilder) build() (*geometry.Mesh, error) {
	var (
		positions   []types.Vec3
		normals     []types.Vec3
		uvs         []types.Vec2
		faces       = make([][3]uint32, len(mb.triangles))
		vertexIndex = make(map[vertexKey]uint32)
	)

	for triIndex, tri := range mb.triangles {
		for i, c := range tri {
			key := c.key
			if key[2] < 0 && mb.hasNormals {
				key[2] = -(mb.sourceFace[triIndex] + 2)
			}

			index, exists := vertexIndex[key]
			if !exists {
				index = uint32(len(positions))
				positions = append(positions, c.p)
				normals = append(normals, c.n)
				uvs = append(uvs, c.uv)
				vertexIndex[key] = index
			}
			faces[triIndex][i] = index
		}
	}

	if !mb.hasNormals {
		normals = nil
	}
	if !mb.hasUVs {
		uvs = nil
	}
	return geometry.NewMesh(mb.name, positions, normals, uvs, faces)
}

type wavefrontSceneReader struct {
	logger log.Logger

	// The parsed model.
	model *asset.Model

	// Meshes in the order they were defined.
	meshes []*meshBuilder

	// List of vertices, normals and uv coords.
	vertexList []types.Vec3
	normalList []types.Vec3
	uvList     []types.Vec2

	// Number of parsed faces across all meshes.
	faceCount int

	// An error stack that provides additional error information when
	// scene files include other files.
	errStack []string
}

// Create a new wavefront scene reader.
func newWavefrontReader() *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger: log.New("wavefront reader"),
		model: &asset.Model{
			Camera: asset.DefaultCameraSetup(),
		},
		vertexList: make([]types.Vec3, 0),
		normalList: make([]types.Vec3, 0),
		uvList:     make([]types.Vec2, 0),
		errStack:   make([]string, 0),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*asset.Model, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	err := r.parse(sceneRes)
	if err != nil {
		return nil, err
	}

	r.model.Name = sceneRes.Name()
	for _, mb := range r.meshes {
		mesh, err := mb.build()
		if err != nil {
			return nil, r.emitError("", 0, "%s", err)
		}
		r.model.Meshes = append(r.model.Meshes, mesh)
	}

	if len(r.model.Meshes) == 0 {
		r.logger.Warningf(`scene "%s" does not define any polygons`, sceneRes.Path())
	}

	r.logger.Noticef("parsed %d meshes with %d triangles in %d ms", len(r.model.Meshes), r.model.TriangleCount(), time.Since(start).Milliseconds())
	return r.model, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = strings.Trim(
			fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	} else {
		errMsg = strings.Trim(
			fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	}

	return fmt.Errorf("%s", errMsg)
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Get the mesh receiving faces, creating a default one if no object has
// been defined yet.
func (r *wavefrontSceneReader) currentMesh() *meshBuilder {
	if len(r.meshes) == 0 {
		r.meshes = append(r.meshes, newMeshBuilder("default"))
	}
	return r.meshes[len(r.meshes)-1]
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex/uv/normal offsets we can apply them
	// while parsing faces to select the correct coordinates.
	relVertexOffset := len(r.vertexList)
	relUvOffset := len(r.uvList)
	relNormalOffset := len(r.normalList)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}

			err = r.parse(incRes)
			incRes.Close()
			if err != nil {
				return err
			}
			r.popFrame()
		case "mtllib", "usemtl", "s":
			// Materials and smoothing groups do not affect geometry
			r.logger.Debugf(`[%s: %d] ignoring "%s"`, res.Path(), lineNum, lineTokens[0])
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.normalList = append(r.normalList, v)
		case "vt":
			v, err := parseVec2(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.uvList = append(r.uvList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.verifyLastParsedMesh()
			r.meshes = append(r.meshes, newMeshBuilder(lineTokens[1]))
		case "f":
			err = r.parseFace(r.currentMesh(), lineTokens, relVertexOffset, relUvOffset, relNormalOffset)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
		case "camera_fov":
			r.model.Camera.FOV, err = parseFloat32(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
		case "camera_eye":
			r.model.Camera.Eye, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
		case "camera_look":
			r.model.Camera.Look, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
		case "camera_up":
			r.model.Camera.Up, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
		default:
			r.logger.Warningf(`[%s: %d] skipping unsupported statement "%s"`, res.Path(), lineNum, lineTokens[0])
		}
	}

	if err = scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err)
	}

	r.verifyLastParsedMesh()
	return nil
}

// Drop the last parsed mesh if it contains no faces.
func (r *wavefrontSceneReader) verifyLastParsedMesh() {
	lastMeshIndex := len(r.meshes) - 1
	if lastMeshIndex >= 0 && len(r.meshes[lastMeshIndex].triangles) == 0 {
		r.logger.Warningf(`dropping mesh "%s" as it contains no polygons`, r.meshes[lastMeshIndex].name)
		r.meshes = r.meshes[:lastMeshIndex]
	}
}

// Parse face definition. Each face definitions consists of 3 arguments,
// one for each vertex. Each one of the vertex arguments is comprised of
// 1, 2 or 3 args separated by a slash character. The following formats are
// supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate
// an offset off the end of the vertex/uv list.
//
// This method only works with triangular/quad faces and will return an error if a
// face with more than 4 vertices is encountered.
func (r *wavefrontSceneReader) parseFace(mb *meshBuilder, lineTokens []string, relVertexOffset, relUvOffset, relNormalOffset int) error {
	if len(lineTokens) < 4 || len(lineTokens) > 5 {
		return fmt.Errorf(`unsupported syntax for "f"; expected 3 arguments for triangular face or 4 arguments for a quad face; got %d. Select the triangulation option in your exporter`, len(lineTokens)-1)
	}

	var corners [4]corner
	var vOffset int
	var err error
	expIndices := 0
	hasNormals, hasUVs := false, false
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err = selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		corners[arg].p = r.vertexList[vOffset]
		corners[arg].key = vertexKey{vOffset, -1, -1}

		// Parse UV coords if specified
		if expIndices > 1 && vTokens[1] != "" {
			vOffset, err = selectFaceCoordIndex(vTokens[1], len(r.uvList), relUvOffset)
			if err != nil {
				return fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
			corners[arg].uv = r.uvList[vOffset]
			corners[arg].key[1] = vOffset
			hasUVs = true
		}

		// Parse normal coords if specified
		if expIndices > 2 && vTokens[2] != "" {
			vOffset, err = selectFaceCoordIndex(vTokens[2], len(r.normalList), relNormalOffset)
			if err != nil {
				return fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
			corners[arg].n = r.normalList[vOffset]
			corners[arg].key[2] = vOffset
			hasNormals = true
		}
	}

	// If no normals are available generate them from the vertices
	if !hasNormals {
		e01 := corners[1].p.Sub(corners[0].p)
		e02 := corners[2].p.Sub(corners[0].p)
		faceNormal := e01.Cross(e02).Normalize()
		for arg := range corners {
			corners[arg].n = faceNormal
		}
	}

	mb.hasNormals = mb.hasNormals || hasNormals
	mb.hasUVs = mb.hasUVs || hasUVs

	// Assemble vertices into one or two triangles depending on whether we are parsing a triangular or a quad face
	indiceList := [][3]int{{0, 1, 2}}
	if len(lineTokens) == 5 {
		indiceList = append(indiceList, [3]int{0, 2, 3})
	}

	for _, indices := range indiceList {
		mb.addTriangle(r.faceCount, [3]corner{corners[indices[0]], corners[indices[1]], corners[indices[2]]})
	}
	r.faceCount++

	return nil
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a float scalar value.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf(`unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf(`unsupported syntax for "%s"; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
