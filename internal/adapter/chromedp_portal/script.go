package chromedp_portal

// printOverrideJS neutralizes the page's print entry point. Instead of
// opening the platform print dialog, the replacement appends print-oriented
// style rules and signals intent through a custom event; the actual capture
// happens over the DevTools protocol.
const printOverrideJS = `(function() {
	window.originalPrint = window.print;
	window.print = function() {
		var printStyle = document.createElement('style');
		printStyle.innerHTML = [
			'@media print {',
			'  body { margin: 0; padding: 5px; font-size: 12px; }',
			'  * { -webkit-print-color-adjust: exact !important; }',
			'  .no-print, .noprint { display: none !important; }',
			'  table { page-break-inside: avoid; border-collapse: collapse; width: 100% !important; }',
			'}',
			'@page { size: A4 landscape; margin: 0.5cm; }'
		].join('\n');
		document.head.appendChild(printStyle);
		window.dispatchEvent(new CustomEvent('schedulePrintRequested'));
		return false;
	};
})();`
