package doublets_test

import (
	"bytes"
	"context"
	"fmt"

	"github.com/hupe1980/doublets"
)

func Example() {
	links, err := doublets.New[uint64]()
	if err != nil {
		panic(err)
	}
	defer links.Close()

	c := links.Constants()

	// Every link starts as a self-loop.
	a, _ := links.Create()
	b, _ := links.Create()
	ab, _ := links.Create()
	_, _ = links.Update(ab, a, b)

	for link, err := range links.EachSeq(c.Query(c.Any, a, c.Any)) {
		if err != nil {
			panic(err)
		}
		fmt.Println(link)
	}
	fmt.Println("links:", links.CountAll())

	// Output:
	// (1: 1 -> 1)
	// (3: 1 -> 2)
	// links: 3
}

func ExampleLinks_Each() {
	links := doublets.United[uint32]().MustBuild()
	defer links.Close()

	for range 5 {
		_, _ = links.Create()
	}

	ctrl, err := links.EachAll(func(l doublets.Link[uint32]) (doublets.Control, error) {
		fmt.Println("visit", l.ID)
		if l.ID == 2 {
			return doublets.Break, nil
		}
		return doublets.Continue, nil
	})
	fmt.Println(ctrl, err)

	// Output:
	// visit 1
	// visit 2
	// break <nil>
}

func ExampleLinks_Update_itself() {
	links, _ := doublets.New[uint64]()
	defer links.Close()

	c := links.Constants()
	id, _ := links.Create()
	_, _ = links.Update(id, c.Null, c.Itself)

	link, _ := links.Get(id)
	fmt.Println(link)

	// Output:
	// (1: 0 -> 1)
}

func ExampleLinks_Delete() {
	links, _ := doublets.New[uint64]()
	defer links.Close()

	for range 3 {
		_, _ = links.Create()
	}
	_, _ = links.Delete(2)

	// Freed ids are handed out again before the table grows.
	id, _ := links.Create()
	fmt.Println(id)

	_, err := links.Delete(9)
	fmt.Println(err)

	// Output:
	// 2
	// not found: link 9
}

func ExampleLinks_Export() {
	links, _ := doublets.New[uint64]()
	defer links.Close()

	a, _ := links.Create()
	b, _ := links.Create()
	_, _ = links.Update(b, a, a)

	var img bytes.Buffer
	if _, err := links.Export(context.Background(), &img, doublets.WithCompression(doublets.CompressionZstd)); err != nil {
		panic(err)
	}

	restored, err := doublets.Import[uint64](context.Background(), &img)
	if err != nil {
		panic(err)
	}
	defer restored.Close()

	link, _ := restored.Get(b)
	fmt.Println(link)

	// Output:
	// (2: 1 -> 1)
}

func ExampleLinks_Verify() {
	links, _ := doublets.New[uint64]()
	defer links.Close()

	a, _ := links.Create()
	b, _ := links.Create()
	_, _ = links.Update(b, a, b)
	_, _ = links.Delete(a)

	report, err := links.Verify(context.Background())
	if err != nil {
		panic(err)
	}
	for _, d := range report.Dangling {
		fmt.Println(d)
	}

	// Output:
	// link 2 source -> freed 1
}

func ExampleConstants_Query() {
	c := doublets.DefaultConstants[uint32]()
	q := c.Query(c.Any, 7, c.Any)
	fmt.Println(q[c.SourcePart], q[c.IndexPart] == c.Any)

	// Output:
	// 7 true
}
