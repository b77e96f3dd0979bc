package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/binzume/fbxreader/converter"
	"github.com/binzume/fbxreader/fbx"
	"github.com/davecgh/go-spew/spew"
	"github.com/qmuntal/gltf"
)

func dump(doc *fbx.Document, conf *config) error {
	switch conf.Format {
	case "raw":
		doc.Dump(os.Stdout, conf.Full)
	case "tree":
		root, err := doc.RootNode()
		if err != nil {
			return err
		}
		root.Dump(os.Stdout)
	case "yaml":
		return writeSummary(os.Stdout, doc)
	case "spew":
		c := spew.NewDefaultConfig()
		c.DisableCapacities = true
		c.DisablePointerAddresses = true
		if !conf.Full {
			c.MaxDepth = 6
		}
		c.Fdump(os.Stdout, doc.Nodes)
	default:
		return fmt.Errorf("Unsupported format: %v", conf.Format)
	}
	return nil
}

func saveGLB(doc *fbx.Document, output string, scale float32) error {
	conv := converter.NewFBXToGLTFConverter(&converter.FBXToGLTFOption{Scale: scale})
	gltfdoc, err := conv.Convert(doc)
	if gltfdoc == nil {
		return err
	}
	if err != nil {
		log.Println("WARN:", err)
	}
	return gltf.SaveBinary(gltfdoc, output)
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.fbx\n", os.Args[0])
		flag.PrintDefaults()
	}
	confFile := flag.String("config", "", "yaml config file")
	format := flag.String("format", "", "raw, tree, yaml or spew")
	full := flag.Bool("full", false, "dump array contents")
	nocheck := flag.Bool("nocheck", false, "skip footer checksum")
	glb := flag.String("glb", "", "write skeleton and animations to .glb")
	scale := flag.Float64("scale", 0, "glb scale (0: config or 1)")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return
	}

	conf, err := loadConfig(*confFile)
	if err != nil {
		log.Fatal(err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			conf.Format = *format
		case "full":
			conf.Full = *full
		case "nocheck":
			conf.IgnoreFooterChecksum = *nocheck
		case "glb":
			conf.GLB = *glb
		case "scale":
			conf.Scale = float32(*scale)
		}
	})

	r, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	doc, warn, err := fbx.Decoder{IgnoreFooterChecksum: conf.IgnoreFooterChecksum}.Decode(r)
	r.Close()
	if err != nil {
		log.Fatal(err)
	}
	if warn != nil {
		log.Println("WARN:", warn)
	}

	if conf.GLB != "" {
		if err := saveGLB(doc, conf.GLB, conf.Scale); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := dump(doc, conf); err != nil {
		log.Fatal(err)
	}
}
