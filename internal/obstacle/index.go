package obstacle

// DefaultBucketSize is the edge length, in cells, of an Index bucket.
const DefaultBucketSize = 64

type bucketKey struct {
	bx, by int
}

// Index is a bucketed spatial index over obstacle rectangles. Each bucket
// lists the rectangles overlapping it, so a lookup only scans rectangles
// near the queried cell. It answers exactly like Set for the same input.
type Index struct {
	bucketSize int
	buckets    map[bucketKey][]int
	rects      []Rect
}

func NewIndex(bucketSize int, rects ...Rect) *Index {
	if bucketSize <= 0 {
		bucketSize = DefaultBucketSize
	}
	idx := &Index{
		bucketSize: bucketSize,
		buckets:    make(map[bucketKey][]int),
		rects:      make([]Rect, 0, len(rects)),
	}
	for _, r := range rects {
		r = r.Normalized()
		i := len(idx.rects)
		idx.rects = append(idx.rects, r)
		for by := idx.bucketOf(r.Y1); by <= idx.bucketOf(r.Y2); by++ {
			for bx := idx.bucketOf(r.X1); bx <= idx.bucketOf(r.X2); bx++ {
				key := bucketKey{bx, by}
				idx.buckets[key] = append(idx.buckets[key], i)
			}
		}
	}
	return idx
}

// bucketOf floors towards negative infinity so negative cells land in
// their own buckets.
func (idx *Index) bucketOf(v int) int {
	if v >= 0 {
		return v / idx.bucketSize
	}
	return -((-v + idx.bucketSize - 1) / idx.bucketSize)
}

func (idx *Index) IsBlocked(x, y int) bool {
	if idx == nil {
		return false
	}
	for _, i := range idx.buckets[bucketKey{idx.bucketOf(x), idx.bucketOf(y)}] {
		if idx.rects[i].Contains(x, y) {
			return true
		}
	}
	return false
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.rects)
}
