// Command vago trains a variational autoencoder on MNIST and writes
// out what it learned: reconstructions, the latent manifold, and an
// animation of training progress.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/gorgonia/vago"
	gifenc "github.com/gorgonia/vago/encoding/gif"
	"github.com/gorgonia/vago/mnist"
	"github.com/gorgonia/vago/vae"

	"net/http"
	_ "net/http/pprof"
)

var (
	dataDir = flag.String("data", "testdata/mnist", "directory holding the MNIST IDX files")
	epochs  = flag.Int("epochs", 75, "training epochs")
	batch   = flag.Int("batch", 100, "batch size")
	latent  = flag.Int("latent", 20, "latent dimensions (use 2 if you want a manifold)")
	hidden  = flag.Int("hidden", 500, "hidden layer width")
	seed    = flag.Int64("seed", 0, "seed for weight draws and sampling noise")
	report  = flag.Int("report", 5, "epochs between cost reports")

	modelFile = flag.String("model", "mnist.model", "where to save the trained model")
	loadFile  = flag.String("load", "", "resume from a previously saved model")
	reconOut  = flag.String("recon", "recon.png", "reconstruction grid output")
	manifOut  = flag.String("manifold", "manifold.png", "latent manifold output (2-d latent only)")
	gifOut    = flag.String("gif", "", "training progress animation output")
	statsOut  = flag.String("stats", "", "cost history CSV output")
	dotOut    = flag.String("dot", "", "network graphviz output")
	pprofAddr = flag.String("pprof", "", "pprof listen address, e.g. localhost:6060")
)

func main() {
	flag.Parse()

	if *pprofAddr != "" {
		go func() {
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	ds, err := mnist.Load(*dataDir, true, *seed)
	if err != nil {
		log.Fatalf("loading MNIST: %+v", err)
	}
	h, w := ds.ImageDims()
	log.Printf("%d images of %d×%d", ds.Len(), h, w)

	nnConf := vae.DefaultConf(ds.Dims(), *latent)
	nnConf.RecogHidden1 = *hidden
	nnConf.RecogHidden2 = *hidden
	nnConf.GenerHidden1 = *hidden
	nnConf.GenerHidden2 = *hidden
	nnConf.BatchSize = *batch
	nnConf.Seed = *seed

	conf := vago.Config{
		Name:        "MNIST VAE",
		NNConf:      nnConf,
		ImageH:      h,
		ImageW:      w,
		ReportEvery: *report,
	}

	var gifFile *os.File
	if *gifOut != "" {
		if gifFile, err = os.Create(*gifOut); err != nil {
			log.Fatalf("%v", err)
		}
		defer gifFile.Close()
		conf.OutputEncoder = gifenc.NewEncoder(gifFile)
	}

	s := vago.New(ds, conf)
	defer s.Close()

	if *loadFile != "" {
		if err = s.Load(*loadFile); err != nil {
			log.Fatalf("loading model: %+v", err)
		}
	}

	if *dotOut != "" {
		if err = writeDot(s, *dotOut); err != nil {
			log.Fatalf("%+v", err)
		}
	}

	if err = s.Learn(*epochs); err != nil {
		log.Fatalf("training: %+v", err)
	}
	if err = s.Save(*modelFile); err != nil {
		log.Fatalf("saving model: %+v", err)
	}

	if *statsOut != "" {
		if err = s.Dump(*statsOut); err != nil {
			log.Fatalf("%+v", err)
		}
	}
	if *reconOut != "" {
		if err = writeReconstructions(s, ds, *reconOut); err != nil {
			log.Fatalf("%+v", err)
		}
	}
	if *manifOut != "" && *latent == 2 {
		if err = writeManifold(s, *manifOut); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}
