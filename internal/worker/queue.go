package worker

// BuildQueue filters already-completed chapters out of candidates while
// preserving their order. It never reorders: chapters enter the queue in the
// order given, so parallel runs still start earlier chapters first even
// though they may finish out of order.
func BuildQueue(candidates []int, completed map[int]bool) []int {
	queue := make([]int, 0, len(candidates))
	for _, n := range candidates {
		if completed[n] {
			continue
		}
		queue = append(queue, n)
	}
	return queue
}

// feed pushes chapters into a channel and closes it, so workers drain it by
// ranging until the channel reports closed.
func feed(chapters []int) <-chan int {
	ch := make(chan int, len(chapters))
	for _, n := range chapters {
		ch <- n
	}
	close(ch)
	return ch
}
