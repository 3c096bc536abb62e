package aspen

// BuiltinDocument is the default document loaded by View.Start when the
// host supplies no bytes of its own.
const BuiltinDocument = `<svg xmlns="http://www.w3.org/2000/svg" width="512" height="512">
  <rect x="32" y="32" width="448" height="448" fill="#1d3557"/>
  <circle cx="256" cy="208" r="120" fill="#e63946"/>
  <path d="M96 416 L256 288 L416 416 Z" fill="#f1faee" stroke="#457b9d" stroke-width="6"/>
  <g fill="#a8dadc">
    <rect x="80" y="72" width="64" height="64"/>
    <rect x="368" y="72" width="64" height="64"/>
  </g>
  <polyline points="64,472 160,440 256,472 352,440 448,472" fill="none" stroke="#f4a261" stroke-width="4"/>
</svg>
`
