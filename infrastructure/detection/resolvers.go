//go:build detection

package detection

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"strings"
	"sync"

	"poke-battle-logger/domain/recognition"
	"poke-battle-logger/infrastructure/vectorindex"

	"gocv.io/x/gocv"
)

type labeledMat struct {
	label string
	mat   gocv.Mat
}

// TemplateResolver identifies a crop by its best labeled template
type TemplateResolver struct {
	name      string
	templates []labeledMat
	minScore  float64
}

// NewTemplateResolver loads labeled templates, resized by scale
func NewTemplateResolver(name string, files []LabeledFile, scale, minScore float64) (*TemplateResolver, error) {
	r := &TemplateResolver{name: name, minScore: minScore}
	for _, f := range files {
		m, err := loadTemplate(f.Path, scale)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.templates = append(r.templates, labeledMat{label: f.Label, mat: m})
	}
	return r, nil
}

// Name implements recognition.Resolver
func (r *TemplateResolver) Name() string {
	return r.name
}

// Resolve implements recognition.Resolver
func (r *TemplateResolver) Resolve(ctx context.Context, crop image.Image) (recognition.Result, error) {
	if len(r.templates) == 0 {
		return recognition.Unresolved, nil
	}
	gray, err := imageToGray(crop)
	if err != nil {
		return recognition.Unresolved, err
	}
	defer gray.Close()

	best, bestScore := "", 0.0
	for _, t := range r.templates {
		if score := matchScore(gray, t.mat); score > bestScore {
			best, bestScore = t.label, score
		}
	}
	if bestScore >= r.minScore {
		return recognition.Resolved(best), nil
	}
	return recognition.Unresolved, nil
}

// Close releases the templates
func (r *TemplateResolver) Close() error {
	for _, t := range r.templates {
		t.mat.Close()
	}
	r.templates = nil
	return nil
}

// inputSize is the square input of the shipped ONNX models
const inputSize = 224

// network serializes forward passes of one gocv dnn net
type network struct {
	mu  sync.Mutex
	net gocv.Net
}

func readNetwork(path string) (*network, error) {
	net := gocv.ReadNet(path, "")
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("failed to load model %s", path)
	}
	return &network{net: net}, nil
}

// forward runs the net on a crop and copies the output vector
func (n *network) forward(crop image.Image) ([]float32, error) {
	m, err := gocv.ImageToMatRGB(crop)
	if err != nil {
		return nil, fmt.Errorf("failed to convert crop: %w", err)
	}
	defer m.Close()

	blob := gocv.BlobFromImage(m, 1.0/255.0, image.Pt(inputSize, inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	n.mu.Lock()
	defer n.mu.Unlock()
	n.net.SetInput(blob, "")
	out := n.net.Forward("")
	defer out.Close()

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read model output: %w", err)
	}
	return append([]float32(nil), data...), nil
}

func (n *network) Close() error {
	return n.net.Close()
}

// DNNClassifier identifies a pokemon with an image classification model
type DNNClassifier struct {
	net           *network
	labels        []string
	minConfidence float64
}

// NewDNNClassifier loads an ONNX classifier and its label file (one per line)
func NewDNNClassifier(modelPath, labelsPath string, minConfidence float64) (*DNNClassifier, error) {
	labels, err := readLabels(labelsPath)
	if err != nil {
		return nil, err
	}
	net, err := readNetwork(modelPath)
	if err != nil {
		return nil, err
	}
	return &DNNClassifier{net: net, labels: labels, minConfidence: minConfidence}, nil
}

// Name implements recognition.Resolver
func (c *DNNClassifier) Name() string {
	return "classifier"
}

// Resolve implements recognition.Resolver
func (c *DNNClassifier) Resolve(ctx context.Context, crop image.Image) (recognition.Result, error) {
	scores, err := c.net.forward(crop)
	if err != nil {
		return recognition.Unresolved, err
	}
	if len(scores) != len(c.labels) {
		return recognition.Unresolved, fmt.Errorf("model returned %d scores for %d labels", len(scores), len(c.labels))
	}
	i, conf := argmax(softmax(scores))
	if conf > c.minConfidence {
		return recognition.Resolved(c.labels[i]), nil
	}
	return recognition.Unresolved, nil
}

// Close releases the model
func (c *DNNClassifier) Close() error {
	return c.net.Close()
}

// EmbeddingResolver identifies a pokemon by its nearest labeled embedding
type EmbeddingResolver struct {
	net         *network
	index       *vectorindex.Index
	maxDistance float64
}

// NewEmbeddingResolver loads an ONNX embedding model searched against index
func NewEmbeddingResolver(modelPath string, index *vectorindex.Index, maxDistance float64) (*EmbeddingResolver, error) {
	net, err := readNetwork(modelPath)
	if err != nil {
		return nil, err
	}
	return &EmbeddingResolver{net: net, index: index, maxDistance: maxDistance}, nil
}

// Name implements recognition.Resolver
func (r *EmbeddingResolver) Name() string {
	return "embedding"
}

// Embed returns the embedding of a crop
func (r *EmbeddingResolver) Embed(crop image.Image) ([]float32, error) {
	return r.net.forward(crop)
}

// Resolve implements recognition.Resolver
func (r *EmbeddingResolver) Resolve(ctx context.Context, crop image.Image) (recognition.Result, error) {
	if r.index == nil || r.index.Len() == 0 {
		return recognition.Unresolved, nil
	}
	vec, err := r.net.forward(crop)
	if err != nil {
		return recognition.Unresolved, err
	}
	label, ok, err := r.index.Nearest(vec, r.maxDistance)
	if err != nil || !ok {
		return recognition.Unresolved, err
	}
	return recognition.Resolved(label), nil
}

// Close releases the model
func (r *EmbeddingResolver) Close() error {
	return r.net.Close()
}

func readLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels: %w", err)
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if l := strings.TrimSpace(scanner.Text()); l != "" {
			labels = append(labels, l)
		}
	}
	return labels, scanner.Err()
}

func softmax(v []float32) []float64 {
	out := make([]float64, len(v))
	max := math.Inf(-1)
	for _, x := range v {
		max = math.Max(max, float64(x))
	}
	sum := 0.0
	for i, x := range v {
		out[i] = math.Exp(float64(x) - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func argmax(v []float64) (int, float64) {
	best, bestVal := 0, math.Inf(-1)
	for i, x := range v {
		if x > bestVal {
			best, bestVal = i, x
		}
	}
	return best, bestVal
}

// Ensure the resolvers implement recognition.Resolver
var (
	_ recognition.Resolver = (*TemplateResolver)(nil)
	_ recognition.Resolver = (*DNNClassifier)(nil)
	_ recognition.Resolver = (*EmbeddingResolver)(nil)
)
