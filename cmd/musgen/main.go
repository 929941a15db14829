package main

import (
	"os"
	"reflect"
	"strings"

	musgen "github.com/mus-format/musgen-go/mus"
	genops "github.com/mus-format/musgen-go/options/generate"
	structops "github.com/mus-format/musgen-go/options/struct"
	typeops "github.com/mus-format/musgen-go/options/type"
	"github.com/poiesic/wheretobuy/core"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	// go generate runs from core/
	if strings.HasSuffix(cwd, "core") {
		if err := os.Chdir(".."); err != nil {
			panic(err)
		}
	}
	g, err := musgen.NewCodeGenerator(
		genops.WithPkgPath("github.com/poiesic/wheretobuy/core"),
	)
	if err != nil {
		panic(err)
	}

	g.AddDefinedType(reflect.TypeFor[core.ID]())
	g.AddDefinedType(reflect.TypeFor[core.Tier]())
	g.AddDefinedType(reflect.TypeFor[core.Provenance]())

	// Unix micro timestamps
	micro := typeops.WithTimeUnit(typeops.Micro)
	err = g.AddStruct(reflect.TypeFor[core.Product](),
		structops.WithField(), // Id
		structops.WithField(), // Name
		structops.WithField(), // Producer
		structops.WithField(), // Varietal
		structops.WithField(), // Vintage
		structops.WithField(), // Category
		structops.WithField(), // ImageURL
		structops.WithField(), // Processed
		structops.WithField(micro),
		structops.WithField(micro))
	if err != nil {
		panic(err)
	}

	err = g.AddStruct(reflect.TypeFor[core.Placement](),
		structops.WithField(), // ProductID
		structops.WithField(), // Rank
		structops.WithField(), // StoreName
		structops.WithField(), // URL
		structops.WithField(), // ProductName
		structops.WithField(), // Price
		structops.WithField(), // Rating
		structops.WithField(), // Thumbnail
		structops.WithField(), // Tier
		structops.WithField(), // Score
		structops.WithField(), // Reason
		structops.WithField(), // Provenance
		structops.WithField(micro))
	if err != nil {
		panic(err)
	}

	bs, err := g.Generate()
	if err != nil {
		panic(err)
	}

	err = os.WriteFile("./core/records_mus.gen.go", bs, 0644)
	if err != nil {
		panic(err)
	}
}
