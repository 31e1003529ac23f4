package vago

import (
	"sync"
)

var rowsPool = make(map[int]map[int]*sync.Pool)

func borrowRows(h, w int) [][]float32 {
	if d, ok := rowsPool[h]; ok {
		if d2, ok := d[w]; ok {
			return d2.Get().([][]float32)
		}
	}
	retVal := make([][]float32, h)
	for i := range retVal {
		retVal[i] = make([]float32, w)
	}
	return retVal
}

func ReturnRows(h, w int, it [][]float32) {
	newPool := func() *sync.Pool {
		return &sync.Pool{
			New: func() interface{} {
				retVal := make([][]float32, h)
				for i := range retVal {
					retVal[i] = make([]float32, w)
				}
				return retVal
			},
		}
	}
	if d, ok := rowsPool[h]; ok {
		if _, ok := d[w]; !ok {
			d[w] = newPool()
		}
		d[w].Put(it)
		return
	}
	rowsPool[h] = map[int]*sync.Pool{w: newPool()}
	rowsPool[h][w].Put(it)
}
