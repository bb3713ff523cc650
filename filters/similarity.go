package filters

// similarityRatio 两段文本的相似度，0 到 1。
// 递归取最长公共子串统计匹配字符数，ratio = 2*M/T。
func similarityRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	matches := countMatches(ra, rb)
	return 2 * float64(matches) / float64(total)
}

func countMatches(a, b []rune) int {
	ai, bi, size := longestCommonRun(a, b)
	if size == 0 {
		return 0
	}
	return size +
		countMatches(a[:ai], b[:bi]) +
		countMatches(a[ai+size:], b[bi+size:])
}

// longestCommonRun 最长公共子串的起点和长度
func longestCommonRun(a, b []rune) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0
	// lengths[j] = 以 a[i-1], b[j-1] 结尾的公共子串长度
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > bestSize {
					bestSize = lengths[j]
					bestA = i - bestSize
					bestB = j - bestSize
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return bestA, bestB, bestSize
}

// prefixRunes 截取前 n 个字符
func prefixRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
