package wdcomp_test

import (
	"fmt"

	"github.com/joeycumines/go-sdei/wdcomp"
)

func Example() {
	q := wdcomp.NewMemQueue(8)
	defer q.Close()

	ctx, err := wdcomp.NewContext(q, &wdcomp.ContextSetup{Level: 6})
	if err != nil {
		panic(err)
	}
	defer ctx.Close()

	in := []byte("hello, accelerator")
	compressed := make([]byte, 128)

	flush := wdcomp.Finish
	_, produced, err := ctx.Do(wdcomp.OpDeflate, &flush, in, compressed)
	if err != nil {
		panic(err)
	}

	restored := make([]byte, 128)
	flush = wdcomp.Finish
	_, n, err := ctx.Do(wdcomp.OpInflate, &flush, compressed[:produced], restored)
	if err != nil {
		panic(err)
	}

	fmt.Println(string(restored[:n]))
	// Output: hello, accelerator
}
