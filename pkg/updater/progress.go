package updater

// progressWriter counts bytes flowing through a download and publishes
// integer percentages (floor of received/total*100) whenever the value
// changes. When the response carries no content length nothing is published.
type progressWriter struct {
	total    int64
	received int64
	lastPct  int
	publish  func(int)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.received += int64(len(b))
	if p.total > 0 {
		pct := int(p.received * 100 / p.total)
		if pct != p.lastPct || p.received == int64(len(b)) {
			p.lastPct = pct
			p.publish(pct)
		}
	}
	return len(b), nil
}
