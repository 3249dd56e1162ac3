package model

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"seqmark.io/hmm/logger"
)

// Definition is the on-disk YAML form of a model. The definition name is
// taken from the file name, not from the file contents.
type Definition struct {
	Name     string   `yaml:"-" json:"name"`
	FilePath string   `json:"file_path"`
	Alphabet []string `yaml:"alphabet" json:"alphabet"`
	States   []State  `yaml:"states" json:"states"`
}

// Build constructs the validated Model described by the definition.
func (def Definition) Build() (*Model, error) {
	m, err := New(def.Alphabet, def.States)
	if err != nil {
		return nil, fmt.Errorf("definition %q: %w", def.Name, err)
	}
	return m, nil
}

// Catalog maps definition names to ready-to-decode models.
type Catalog map[string]*Model

// Get returns the named model.
func (catalog Catalog) Get(name string) (*Model, error) {
	m, exists := catalog[name]
	if !exists {
		return nil, fmt.Errorf("model %q is not in the catalog", name)
	}
	return m, nil
}

// LoadCatalog reads every *.yaml definition in the directory and builds the
// corresponding models. Files that fail to parse or validate are logged and
// skipped so one broken definition does not take the whole catalog down.
func LoadCatalog(dirPath string) (Catalog, error) {
	hmmLogger := logger.NewLogger("LoadCatalog")

	files, err := ioutil.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	defChan := make(chan Definition, len(files))
	for _, f := range files {
		// Skip dirs and non-yaml files
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}

		wg.Add(1)
		go func(file os.FileInfo) {
			defer wg.Done()
			def := Definition{
				Name:     strings.Split(file.Name(), ".yaml")[0],
				FilePath: path.Join(dirPath, file.Name()),
			}
			buf, err := ioutil.ReadFile(def.FilePath)
			if err != nil {
				hmmLogger.Err(err)
				return
			}
			if err := yaml.Unmarshal(buf, &def); err != nil {
				hmmLogger.Err(err)
				return
			}
			defChan <- def
		}(f)
	}

	go func() {
		wg.Wait()
		close(defChan)
	}()

	catalog := make(Catalog, len(files))
	for def := range defChan {
		m, err := def.Build()
		if err != nil {
			hmmLogger.Err(err).Msgf("Skipping invalid model definition %q", def.FilePath)
			continue
		}
		catalog[def.Name] = m
	}
	return catalog, nil
}
