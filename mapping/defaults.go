package mapping

// DefaultRules are the rules used without a -mapping file. They were
// compiled from an audit of the Vancouver extract.
const DefaultRules = `
streets:
  expected:
    - Street
    - Avenue
    - Boulevard
    - Drive
    - Court
    - Place
    - Square
    - Lane
    - Road
    - Trail
    - Parkway
    - Commons
    - Alley
    - Broadway
    - Crescent
    - Esplanade
    - Terminal
    - Walk
    - Way
    - Venue
    - Kingsway
    - Mews
    - S
  mapping:
    St: Street
    St.: Street
    Steet: Street
    street: Street
    Ave: Avenue
    Ave.: Avenue
    Rd: Road
    Rd.: Road
    Dr.: Drive
    Denmanstreet: Denman Street
    Jervis: Jervis Street
    Broughton: Broughton Street

postcodes:
  unresolved: drop

tags:
  addr:street:
    normalizer: street
    elements: [node, way]
  addr:postcode:
    normalizer: postcode
    elements: [node]

problem_chars: '[=\+/&<>;''"\?%#$@\,\. \t\r\n]'
default_tag_type: regular
`
