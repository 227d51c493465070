package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mvp-joe/stubcheck/internal/model"
	"github.com/mvp-joe/stubcheck/internal/stubs"
)

func main() {
	path := "testdata/stubs/standard/standard.php"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	file, err := stubs.NewParser().ParseFile(context.Background(), path)
	if err != nil {
		log.Fatal(err)
	}

	parsers := model.DefaultDocParsers()

	fmt.Println("=== FUNCTIONS ===")
	fmt.Printf("Count: %d\n", len(file.Functions))
	for _, node := range file.Functions {
		fn := model.FromSyntaxNode(node, parsers)
		fmt.Printf("  %s (line %d) deprecated=%s\n", fn.Name, node.Line, fn.Deprecated)
		for i, p := range fn.Parameters {
			fmt.Printf("    #%d $%s type=%q optional=%t variadic=%t byRef=%t default=%q\n",
				i, p.Name, p.Type, p.Optional, p.Variadic, p.PassedByReference, p.DefaultValue)
		}
		if fn.HasReturnTag {
			fmt.Printf("    @return %s -> %s\n", fn.ReturnTag, fn.ReturnTypeFromDoc)
		}
		for _, link := range fn.Links {
			fmt.Printf("    link %s\n", link)
		}
		if fn.Failed() {
			fmt.Printf("    ERROR %v\n", fn.Err())
		}
	}
}
