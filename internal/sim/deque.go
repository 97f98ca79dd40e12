package sim

// deque is a ring buffer of ints. Index 0 is the top of the stack.
type deque struct {
	buf  []int
	head int
	size int
}

func newDeque(capacity int) *deque {
	if capacity < 1 {
		capacity = 1
	}
	return &deque{buf: make([]int, capacity)}
}

func (d *deque) Len() int { return d.size }

func (d *deque) grow() {
	next := make([]int, len(d.buf)*2)
	for i := 0; i < d.size; i++ {
		next[i] = d.At(i)
	}
	d.buf = next
	d.head = 0
}

func (d *deque) index(i int) int { return (d.head + i) % len(d.buf) }

// At returns the i-th element from the top.
func (d *deque) At(i int) int { return d.buf[d.index(i)] }

func (d *deque) set(i, v int) { d.buf[d.index(i)] = v }

func (d *deque) PushFront(v int) {
	if d.size == len(d.buf) {
		d.grow()
	}
	d.head = (d.head - 1 + len(d.buf)) % len(d.buf)
	d.buf[d.head] = v
	d.size++
}

func (d *deque) PushBack(v int) {
	if d.size == len(d.buf) {
		d.grow()
	}
	d.buf[d.index(d.size)] = v
	d.size++
}

func (d *deque) PopFront() (int, bool) {
	if d.size == 0 {
		return 0, false
	}
	v := d.buf[d.head]
	d.head = (d.head + 1) % len(d.buf)
	d.size--
	return v, true
}

func (d *deque) PopBack() (int, bool) {
	if d.size == 0 {
		return 0, false
	}
	v := d.At(d.size - 1)
	d.size--
	return v, true
}

func (d *deque) swapTop() {
	a, b := d.At(0), d.At(1)
	d.set(0, b)
	d.set(1, a)
}

func (d *deque) rotate() {
	if d.size > 1 {
		v, _ := d.PopFront()
		d.PushBack(v)
	}
}

func (d *deque) reverseRotate() {
	if d.size > 1 {
		v, _ := d.PopBack()
		d.PushFront(v)
	}
}

// Slice copies the contents top to bottom.
func (d *deque) Slice() []int {
	out := make([]int, d.size)
	for i := range out {
		out[i] = d.At(i)
	}
	return out
}
