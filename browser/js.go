package browser

// JS snippets evaluated against the loaded DOM. Each is a single
// arrow-function expression, the form rod's Eval expects.

// jsNavigationStatus reads the HTTP status of the main document from
// the performance navigation entry, without needing CDP event
// listeners.
const jsNavigationStatus = `() => {
	try {
		const entries = performance.getEntriesByType("navigation");
		if (entries.length > 0) return entries[0].responseStatus || 0;
	} catch (e) {}
	return 0;
}`

// jsMetrics reports viewport size and total page height.
const jsMetrics = `() => ({
	vw: window.innerWidth,
	vh: window.innerHeight,
	ph: Math.max(
		document.documentElement ? document.documentElement.scrollHeight : 0,
		document.body ? document.body.scrollHeight : 0
	),
})`

// jsDetectRegions scans for content-region candidates: structural and
// class-name patterns for cards, sections, grid/list items, and
// articles, filtered to visible elements of meaningful size. Matches
// are tagged with a data attribute so re-measurement resolves the same
// node regardless of later class churn.
const jsDetectRegions = `() => {
	const patterns = [
		'[class*="card"]', '[class*="Card"]',
		'section', 'article', 'main > div',
		'[class*="grid"] > *', '[class*="list"] > *',
		'[class*="item"]', '[class*="tile"]',
		'[class*="panel"]', '[class*="teaser"]',
		'ul > li',
	];
	const out = [];
	const seen = new Set();
	let counter = 0;
	for (const pat of patterns) {
		let els;
		try { els = document.querySelectorAll(pat); } catch (e) { continue; }
		for (const el of els) {
			if (seen.has(el)) continue;
			seen.add(el);
			const rect = el.getBoundingClientRect();
			if (rect.width < 100 || rect.height < 80) continue;
			const style = window.getComputedStyle(el);
			if (style.display === 'none' || style.visibility === 'hidden') continue;
			if (parseFloat(style.opacity) === 0) continue;
			if (!el.dataset.slRegion) el.dataset.slRegion = 'r' + (counter++);
			const text = (el.innerText || '').trim();
			out.push({
				selector: '[data-sl-region="' + el.dataset.slRegion + '"]',
				box: {
					x: rect.x,
					y: rect.y + window.scrollY,
					width: rect.width,
					height: rect.height,
				},
				textLen: text.length,
				hasImages: el.querySelector('img') !== null,
			});
			if (out.length >= 40) return out;
		}
	}
	return out;
}`

// jsMeasureRegions re-measures text length and image completion for
// the given selectors. Vanished elements report a zero measure.
const jsMeasureRegions = `(sels) => sels.map(sel => {
	const el = document.querySelector(sel);
	if (!el) return { selector: sel, textLen: 0, imagesLoaded: false };
	const imgs = Array.from(el.querySelectorAll('img'));
	return {
		selector: sel,
		textLen: (el.innerText || '').trim().length,
		imagesLoaded: imgs.length > 0 && imgs.every(i => i.complete && i.naturalWidth > 0),
	};
})`

const jsScrollTo = `(y) => window.scrollTo({ top: y, behavior: 'smooth' })`

const jsScrollBy = `(dy) => window.scrollBy(0, dy)`

const jsScrollIntoView = `(sel) => {
	const el = document.querySelector(sel);
	if (el) el.scrollIntoView({ behavior: 'smooth', block: 'center' });
}`

// jsAnimationMarkers detects animation-framework fingerprints:
// animation-flavoured class names, or known script-driven animation
// libraries on the global object.
const jsAnimationMarkers = `() => {
	const script = !!(window.gsap || window.TweenMax || window.anime ||
		window.AOS || window.ScrollMagic || window.Velocity ||
		window.ScrollReveal || window.lottie);
	const css = document.querySelector(
		'[class*="animate"], [class*="animation"], [class*="aos-"], ' +
		'[class*="wow"], [class*="fade-in"], [class*="slide-in"], [data-aos]'
	) !== null;
	return { css: css, script: script };
}`

// jsLoadingIndicators reports whether any spinner/loader style element
// is still visible.
const jsLoadingIndicators = `() => {
	const sels = [
		'[class*="spinner"]', '[class*="loader"]', '[class*="loading"]',
		'[id*="spinner"]', '[id*="loader"]', '[id*="loading"]',
		'[class*="skeleton"]', '[class*="shimmer"]',
	];
	for (const sel of sels) {
		let els;
		try { els = document.querySelectorAll(sel); } catch (e) { continue; }
		for (const el of els) {
			const rect = el.getBoundingClientRect();
			if (rect.width === 0 || rect.height === 0) continue;
			const style = window.getComputedStyle(el);
			if (style.display === 'none' || style.visibility === 'hidden') continue;
			if (parseFloat(style.opacity) === 0) continue;
			return true;
		}
	}
	return false;
}`
