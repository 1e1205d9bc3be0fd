// package model ingests Wavefront OBJ meshes as triangle shapes, including
// MTL material resolution mapped onto the PBR material model.
package model

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Stronautt/PathTracer/engine/scene"
	"github.com/Stronautt/PathTracer/log"
)

var logger = log.New("model")

// AutoScaleTarget is the largest dimension a model is scaled to when no
// explicit scale is given.
const AutoScaleTarget = 3.0

type objMaterial struct {
	name           string
	diffuse        *[3]float32
	ambient        *[3]float32
	specular       *[3]float32
	shininess      *float32
	dissolve       *float32
	opticalDensity *float32
	diffuseTexture string
}

type face struct {
	v   [3]int // position indices
	vt  [3]int // texcoord indices, -1 when absent
	mat int    // material index, -1 when absent
}

type objMesh struct {
	positions []mgl32.Vec3
	texcoords [][2]float32
	faces     []face
	materials []objMaterial
}

// Load parses an OBJ model and returns its faces as triangle shapes centred
// at position with an explicit scale factor.
//
// Parameters:
//   - path: the OBJ file path
//   - position: world-space model centre
//   - scale: uniform scale factor
//   - defaultMaterial: material applied when no MTL material resolves
//
// Returns:
//   - []scene.Shape: one triangle shape per face
//   - error: a wrapped read or parse error
func Load(path string, position [3]float32, scale float32, defaultMaterial *scene.Material) ([]scene.Shape, error) {
	mesh, err := parseObj(path)
	if err != nil {
		return nil, err
	}
	return buildTriangles(mesh, path, position, scale, defaultMaterial), nil
}

// LoadAutoScaled loads an OBJ model scaled so its largest dimension equals
// AutoScaleTarget.
func LoadAutoScaled(path string, position [3]float32, defaultMaterial *scene.Material) ([]scene.Shape, error) {
	mesh, err := parseObj(path)
	if err != nil {
		return nil, err
	}

	bbMin, bbMax := meshBounds(mesh, 1.0)
	size := bbMax.Sub(bbMin)
	extent := maxf(size[0], maxf(size[1], size[2]))
	scale := float32(1.0)
	if extent > 0 {
		scale = AutoScaleTarget / extent
	}

	return buildTriangles(mesh, path, position, scale, defaultMaterial), nil
}

func parseObj(path string) (*objMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load OBJ %s: %w", path, err)
	}
	defer f.Close()

	mesh := &objMesh{}
	matIndex := map[string]int{}
	currentMat := -1

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				continue
			}
			mesh.positions = append(mesh.positions, mgl32.Vec3{
				parseFloat(fields[1]), parseFloat(fields[2]), parseFloat(fields[3]),
			})
		case "vt":
			if len(fields) < 3 {
				continue
			}
			// Flip V: OBJ uses V=0 at the bottom, textures store top-to-bottom.
			mesh.texcoords = append(mesh.texcoords, [2]float32{
				parseFloat(fields[1]), 1 - parseFloat(fields[2]),
			})
		case "f":
			verts := fields[1:]
			if len(verts) < 3 {
				continue
			}
			// Triangulate the polygon as a fan.
			first := parseFaceVert(verts[0], len(mesh.positions), len(mesh.texcoords))
			for i := 2; i < len(verts); i++ {
				a := parseFaceVert(verts[i-1], len(mesh.positions), len(mesh.texcoords))
				b := parseFaceVert(verts[i], len(mesh.positions), len(mesh.texcoords))
				mesh.faces = append(mesh.faces, face{
					v:   [3]int{first[0], a[0], b[0]},
					vt:  [3]int{first[1], a[1], b[1]},
					mat: currentMat,
				})
			}
		case "mtllib":
			if len(fields) < 2 {
				continue
			}
			mtlPath := filepath.Join(filepath.Dir(path), fields[1])
			mats, mtlErr := parseMtl(mtlPath)
			if mtlErr != nil {
				logger.Warningf("Failed to load MTL for '%s': %v. Using default material.", path, mtlErr)
				continue
			}
			for _, m := range mats {
				matIndex[m.name] = len(mesh.materials)
				mesh.materials = append(mesh.materials, m)
			}
			logger.Infof("Loaded %d materials from MTL for '%s'", len(mats), path)
		case "usemtl":
			if len(fields) < 2 {
				continue
			}
			if idx, ok := matIndex[fields[1]]; ok {
				currentMat = idx
			} else {
				currentMat = -1
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read OBJ %s: %w", path, err)
	}
	return mesh, nil
}

// parseFaceVert parses one "v", "v/vt", "v//vn" or "v/vt/vn" face token,
// resolving negative (relative) indices. Returns (position, texcoord)
// zero-based indices, texcoord -1 when absent.
func parseFaceVert(token string, numPos, numTex int) [2]int {
	parts := strings.Split(token, "/")
	out := [2]int{-1, -1}

	if v, err := strconv.Atoi(parts[0]); err == nil {
		out[0] = resolveIndex(v, numPos)
	}
	if len(parts) > 1 && parts[1] != "" {
		if vt, err := strconv.Atoi(parts[1]); err == nil {
			out[1] = resolveIndex(vt, numTex)
		}
	}
	return out
}

func resolveIndex(idx, count int) int {
	if idx < 0 {
		return count + idx
	}
	return idx - 1
}

func parseMtl(path string) ([]objMaterial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var mats []objMaterial
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" && len(fields) > 1 {
			mats = append(mats, objMaterial{name: fields[1]})
			continue
		}
		if len(mats) == 0 {
			continue
		}
		m := &mats[len(mats)-1]
		switch fields[0] {
		case "Kd":
			m.diffuse = parseColor(fields)
		case "Ka":
			m.ambient = parseColor(fields)
		case "Ks":
			m.specular = parseColor(fields)
		case "Ns":
			v := parseFloat(fields[1])
			m.shininess = &v
		case "d":
			v := parseFloat(fields[1])
			m.dissolve = &v
		case "Ni":
			v := parseFloat(fields[1])
			m.opticalDensity = &v
		case "map_Kd":
			m.diffuseTexture = strings.Join(fields[1:], " ")
		}
	}
	return mats, scanner.Err()
}

func parseColor(fields []string) *[3]float32 {
	if len(fields) < 4 {
		return nil
	}
	c := [3]float32{parseFloat(fields[1]), parseFloat(fields[2]), parseFloat(fields[3])}
	return &c
}

func parseFloat(s string) float32 {
	v, _ := strconv.ParseFloat(s, 32)
	return float32(v)
}

func meshBounds(mesh *objMesh, scale float32) (mgl32.Vec3, mgl32.Vec3) {
	bbMin := mgl32.Vec3{float32(math.MaxFloat32), float32(math.MaxFloat32), float32(math.MaxFloat32)}
	bbMax := bbMin.Mul(-1)
	for _, fc := range mesh.faces {
		for _, vi := range fc.v {
			if vi < 0 || vi >= len(mesh.positions) {
				continue
			}
			p := mesh.positions[vi].Mul(scale)
			for axis := 0; axis < 3; axis++ {
				if p[axis] < bbMin[axis] {
					bbMin[axis] = p[axis]
				}
				if p[axis] > bbMax[axis] {
					bbMax[axis] = p[axis]
				}
			}
		}
	}
	return bbMin, bbMax
}

func buildTriangles(mesh *objMesh, path string, position [3]float32, scale float32, defaultMaterial *scene.Material) []scene.Shape {
	objDir := filepath.Dir(path)
	groupName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	// Centre the model: translate so the bounding-box centre lands at position.
	bbMin, bbMax := meshBounds(mesh, scale)
	center := bbMin.Add(bbMax).Mul(0.5)
	offset := mgl32.Vec3(position).Sub(center)

	triangles := make([]scene.Shape, 0, len(mesh.faces))
	for _, fc := range mesh.faces {
		mat := *defaultMaterial
		texture := ""
		if fc.mat >= 0 && fc.mat < len(mesh.materials) {
			objMat := &mesh.materials[fc.mat]
			mat = mtlToPbr(objMat, defaultMaterial)
			if objMat.diffuseTexture != "" {
				texture = resolveTexturePath(objDir, objMat.diffuseTexture)
			}
		}

		var verts [3]mgl32.Vec3
		ok := true
		for i, vi := range fc.v {
			if vi < 0 || vi >= len(mesh.positions) {
				ok = false
				break
			}
			verts[i] = mesh.positions[vi].Mul(scale).Add(offset)
		}
		if !ok {
			continue
		}

		var uvs [3][2]float32
		for i, ti := range fc.vt {
			if ti >= 0 && ti < len(mesh.texcoords) {
				uvs[i] = mesh.texcoords[ti]
			}
		}

		tri := scene.DefaultShape(scene.ShapeTriangle)
		tri.Name = groupName
		tri.Radius = 0
		tri.V0 = [3]float32(verts[0])
		tri.V1 = [3]float32(verts[1])
		tri.V2 = [3]float32(verts[2])
		tri.UV0 = uvs[0]
		tri.UV1 = uvs[1]
		tri.UV2 = uvs[2]
		tri.Texture = texture
		tri.Material = mat
		triangles = append(triangles, tri)
	}

	logger.Infof("Loaded OBJ '%s': %d triangles", path, len(triangles))
	return triangles
}

// mtlToPbr maps a Wavefront material onto the PBR model: Kd→base_color
// (Ka fallback), Ks intensity→metallic, Ns→roughness, d→transmission,
// Ni→ior.
func mtlToPbr(objMat *objMaterial, fallback *scene.Material) scene.Material {
	m := *fallback

	if objMat.diffuse != nil {
		m.BaseColor = *objMat.diffuse
	} else if objMat.ambient != nil {
		m.BaseColor = *objMat.ambient
	}

	if objMat.specular != nil {
		intensity := (objMat.specular[0] + objMat.specular[1] + objMat.specular[2]) / 3
		m.Metallic = clampf(intensity, 0, 1)
	}

	if objMat.shininess != nil {
		// Shininess 0-1000 maps to roughness 1.0 down toward 0.
		m.Roughness = clampf(1-float32(math.Sqrt(float64(*objMat.shininess/1000))), 0.04, 1)
	}

	if objMat.dissolve != nil && *objMat.dissolve < 1 {
		m.Transmission = 1 - *objMat.dissolve
	}

	if objMat.opticalDensity != nil && *objMat.opticalDensity > 0 {
		m.IOR = *objMat.opticalDensity
	}

	return m
}

// resolveTexturePath resolves an MTL texture path: as-is if it exists,
// otherwise relative to the OBJ directory.
func resolveTexturePath(objDir, texPath string) string {
	if _, err := os.Stat(texPath); err == nil {
		return texPath
	}
	resolved := filepath.Join(objDir, texPath)
	if _, err := os.Stat(resolved); err == nil {
		return resolved
	}
	// Return as-is; the texture loader will report the error.
	return texPath
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
